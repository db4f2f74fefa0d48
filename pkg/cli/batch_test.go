package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBatchFile(t *testing.T) {
	path := writeBatchFile(t, `{
		"requests": [
			{"method": "POST", "path": "/actors/spawn", "body": {"name": "cube"}},
			{"method": "GET", "path": "/actors/get?id=$0.actor.id"}
		],
		"options": {"stop_on_error": true}
	}`)

	req, err := readBatchFile(path, false)
	if err != nil {
		t.Fatalf("readBatchFile() error = %v", err)
	}

	if len(req.Requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(req.Requests))
	}
	if req.Requests[0].Body["name"] != "cube" {
		t.Errorf("step 0 body = %v", req.Requests[0].Body)
	}
	if req.Options == nil || req.Options.StopOnError == nil || !*req.Options.StopOnError {
		t.Errorf("options not preserved: %+v", req.Options)
	}
}

func TestReadBatchFileKeepGoing(t *testing.T) {
	path := writeBatchFile(t, `{"requests": [{"method": "GET", "path": "/status"}]}`)

	req, err := readBatchFile(path, true)
	if err != nil {
		t.Fatalf("readBatchFile() error = %v", err)
	}
	if req.Options == nil || req.Options.StopOnError == nil || *req.Options.StopOnError {
		t.Error("--keep-going should force stop_on_error to false")
	}
}

func TestReadBatchFileKeepGoingOverridesFile(t *testing.T) {
	path := writeBatchFile(t, `{
		"requests": [{"method": "GET", "path": "/status"}],
		"options": {"stop_on_error": true}
	}`)

	req, err := readBatchFile(path, true)
	if err != nil {
		t.Fatalf("readBatchFile() error = %v", err)
	}
	if *req.Options.StopOnError {
		t.Error("--keep-going should override the file's stop_on_error")
	}
}

func TestReadBatchFileErrors(t *testing.T) {
	if _, err := readBatchFile(filepath.Join(t.TempDir(), "missing.json"), false); err == nil {
		t.Error("missing file should error")
	}

	path := writeBatchFile(t, `{"requests": [`)
	if _, err := readBatchFile(path, false); err == nil {
		t.Error("malformed JSON should error")
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	types "github.com/getremoted/remoted/pkg/api/types"
	"github.com/getremoted/remoted/pkg/cli/internal/output"
)

var (
	batchFile      string
	batchKeepGoing bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a sequence of operations from a file",
	Long: `Submit a batch file to the daemon for ordered execution. Steps run in
file order, and a step body may reference an earlier step's result with
$N or $N.field.path tokens.

By default execution stops at the first failed step; --keep-going runs
every step regardless.`,
	Example: `  # Run a batch file
  remoted batch --file setup.json

  # Read the batch from stdin and keep going past failures
  cat setup.json | remoted batch --file - --keep-going`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(batchFile, batchKeepGoing)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "Batch file to run (- for stdin)")
	batchCmd.Flags().BoolVar(&batchKeepGoing, "keep-going", false, "Run every step even after a failure")
	_ = batchCmd.MarkFlagRequired("file")
}

func runBatch(path string, keepGoing bool) error {
	req, err := readBatchFile(path, keepGoing)
	if err != nil {
		return err
	}

	client := newClientFromFlags()
	resp, err := client.Batch(req)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := output.JSON(resp); err != nil {
			return err
		}
	} else {
		printBatchResults(req, resp)
	}

	if !resp.Success {
		return fmt.Errorf("%d of %d steps failed", resp.Failed, len(resp.Results))
	}
	return nil
}

// readBatchFile loads and decodes a batch request, with - meaning
// stdin. keepGoing overrides the file's stop_on_error option.
func readBatchFile(path string, keepGoing bool) (*types.BatchRequest, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var req types.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid batch file: %w", err)
	}

	if keepGoing {
		if req.Options == nil {
			req.Options = &types.BatchOptions{}
		}
		stop := false
		req.Options.StopOnError = &stop
	}
	return &req, nil
}

// printBatchResults prints one line per executed step plus a summary.
func printBatchResults(req *types.BatchRequest, resp *types.BatchResponse) {
	for _, res := range resp.Results {
		step := types.BatchStep{}
		if res.Index >= 0 && res.Index < len(req.Requests) {
			step = req.Requests[res.Index]
		}
		state := "ok"
		if !res.Success {
			state = "failed"
		}
		fmt.Printf("  step %-3d %-7s %s %s\n", res.Index, state, step.Method, step.Path)
	}
	fmt.Println()
	fmt.Printf("%d completed, %d failed\n", resp.Completed, resp.Failed)
}

package batch

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema is the JSON Schema for the batch request body. Unknown
// top-level fields are tolerated; the shapes that the executor depends
// on are pinned.
const envelopeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["requests"],
	"properties": {
		"requests": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["method", "path"],
				"properties": {
					"method": {"type": "string", "minLength": 1},
					"path": {"type": "string", "minLength": 1},
					"body": {"type": "object"}
				}
			}
		},
		"options": {
			"type": "object",
			"properties": {
				"stop_on_error": {"type": "boolean"}
			}
		}
	}
}`

var (
	envelopeOnce sync.Once
	envelope     *jsonschema.Schema
	envelopeErr  error
)

// compiledEnvelope compiles the embedded schema on first use.
func compiledEnvelope() (*jsonschema.Schema, error) {
	envelopeOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("batch.json", strings.NewReader(envelopeSchema)); err != nil {
			envelopeErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		envelope, envelopeErr = compiler.Compile("batch.json")
	})
	return envelope, envelopeErr
}

// ValidateEnvelope checks a decoded batch body against the envelope
// schema. The returned error carries the innermost cause with its field
// location, which is what ends up in the client-facing message.
func ValidateEnvelope(doc any) error {
	schema, err := compiledEnvelope()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return errors.New(leafMessage(ve))
		}
		return err
	}
	return nil
}

// leafMessage walks to the innermost cause and prefixes its location in
// dot notation.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	loc = strings.ReplaceAll(loc, "/", ".")
	if loc == "" {
		return ve.Message
	}
	return loc + ": " + ve.Message
}

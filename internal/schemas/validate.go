// Package schemas validates LLM JSON payloads against embedded JSON Schemas.
// Every payload coming back from a model is untrusted until it passes here.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Schema names accepted by Validate.
const (
	SchemaEvaluation   = "evaluation"
	SchemaResumeEntity = "resume_entities"
	SchemaJobEntity    = "job_entities"
	SchemaResourceList = "resource_list"
)

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("payload failed %s schema: %s", e.Schema, strings.Join(msgs, "; "))
}

// Validate checks a JSON payload against the named embedded schema.
// Returns a *ValidationError when the payload is well-formed JSON that
// violates the schema, and a plain error for malformed JSON or unknown
// schema names.
func Validate(name string, payload []byte) error {
	schemaData, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return fmt.Errorf("unknown schema %q: %w", name, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", name, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: name}
	for _, re := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return verr
}

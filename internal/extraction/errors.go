package extraction

import "fmt"

// UnsupportedFormatError indicates a document format the pipeline cannot read.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %s", e.Format)
}

// ExtractionError wraps a failure in the entity extraction adapter. The
// original cause is preserved for unwrapping.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

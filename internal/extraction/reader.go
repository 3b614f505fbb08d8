package extraction

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Text formats readable without any conversion step.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Audio formats that can be handled when a Transcriber is configured.
var audioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
	".m4a": true,
	".ogg": true,
}

// FileReader reads documents from disk. Plain-text formats are read directly;
// audio formats are routed through the configured Transcriber. Everything
// else is rejected with UnsupportedFormatError.
type FileReader struct {
	transcriber Transcriber
}

// NewFileReader creates a FileReader. The transcriber may be nil, in which
// case audio files are reported as unsupported.
func NewFileReader(transcriber Transcriber) *FileReader {
	return &FileReader{transcriber: transcriber}
}

// Read loads the document at path and returns its text content.
func (r *FileReader) Read(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case textExtensions[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &ExtractionError{Message: "failed to read document", Cause: err}
		}
		return string(data), nil

	case audioExtensions[ext]:
		if r.transcriber == nil {
			return "", &UnsupportedFormatError{Format: ext}
		}
		text, err := r.transcriber.Transcribe(context.Background(), path)
		if err != nil {
			return "", &ExtractionError{Message: "transcription failed", Cause: err}
		}
		return text, nil

	default:
		if ext == "" {
			ext = "(no extension)"
		}
		return "", &UnsupportedFormatError{Format: ext}
	}
}

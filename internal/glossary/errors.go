package glossary

import (
	"errors"
	"fmt"
)

// ConfigurationError is a fatal glossary failure: the file is missing,
// unreadable, or fails schema validation. Every downstream component
// depends on the glossary, so callers must propagate immediately and not
// retry.
type ConfigurationError struct {
	Code    string
	Path    string // glossary file path, or "embedded" for the shipped table
	Message string
	Err     error
}

const (
	// ErrCodeMissing indicates the glossary file does not exist.
	ErrCodeMissing = "GLOSSARY_MISSING"

	// ErrCodeMalformed indicates the file could not be parsed as YAML.
	ErrCodeMalformed = "GLOSSARY_MALFORMED"

	// ErrCodeSchema indicates CUE schema validation rejected the document.
	ErrCodeSchema = "GLOSSARY_SCHEMA"

	// ErrCodeStageUnknown indicates a component referenced a stage that
	// is not defined in the glossary.
	ErrCodeStageUnknown = "GLOSSARY_STAGE_UNKNOWN"
)

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is (or wraps) a glossary
// configuration error.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

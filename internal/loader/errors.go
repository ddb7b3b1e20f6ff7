package loader

import (
	"errors"
	"fmt"
)

// Kind classifies a LoadError.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindParseFailure
	KindUnsupportedConference
	KindMissingConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindParseFailure:
		return "parse_failure"
	case KindUnsupportedConference:
		return "unsupported_conference"
	case KindMissingConfiguration:
		return "missing_configuration"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any LoadError of the same kind.
var (
	ErrNotFound              = errors.New("data file not found")
	ErrParseFailure          = errors.New("cannot parse data file")
	ErrUnsupportedConference = errors.New("unsupported conference")
	ErrMissingConfiguration  = errors.New("data root not configured")
)

var sentinels = map[Kind]error{
	KindNotFound:              ErrNotFound,
	KindParseFailure:          ErrParseFailure,
	KindUnsupportedConference: ErrUnsupportedConference,
	KindMissingConfiguration:  ErrMissingConfiguration,
}

// LoadError is the single error type surfaced by the loader.
type LoadError struct {
	Kind    Kind
	Message string
	Path    string // Source path, when one is known
	Err     error  // Underlying cause, if any
}

func (e *LoadError) Error() string {
	msg := "data load error: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) and friends work for LoadError values.
func (e *LoadError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func newError(kind Kind, path string, cause error, format string, args ...any) *LoadError {
	return &LoadError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Err:     cause,
	}
}

// KindOf returns the kind of a LoadError in err's chain, or 0 if there is none.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// IsNotFound returns true if the error indicates a missing data file.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsParseFailure returns true if the error indicates an unparseable data file.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrParseFailure)
}

// IsUnsupportedConference returns true if the conference is not in the registry.
func IsUnsupportedConference(err error) bool {
	return errors.Is(err, ErrUnsupportedConference)
}

// IsMissingConfiguration returns true if the data root was not configured.
func IsMissingConfiguration(err error) bool {
	return errors.Is(err, ErrMissingConfiguration)
}

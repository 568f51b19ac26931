package model

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeUnknownAppType indicates the app type is not registered.
	ErrCodeUnknownAppType ConfigErrorCode = "UNKNOWN_APP_TYPE"

	// ErrCodeAppNotAvailable indicates the app is not on disk or not importable.
	ErrCodeAppNotAvailable ConfigErrorCode = "APP_NOT_AVAILABLE"

	// ErrCodeUnknownHost indicates the host short name is not registered.
	ErrCodeUnknownHost ConfigErrorCode = "UNKNOWN_HOST"

	// ErrCodeHostNotDeclared indicates the app does not declare the host.
	ErrCodeHostNotDeclared ConfigErrorCode = "HOST_NOT_DECLARED"

	// ErrCodeAlreadyInState indicates a strict enable/disable found nothing to flip.
	ErrCodeAlreadyInState ConfigErrorCode = "ALREADY_IN_STATE"

	// ErrCodeAppCorrupted indicates an enable was refused for a corrupted app.
	ErrCodeAppCorrupted ConfigErrorCode = "APP_CORRUPTED"

	// ErrCodeInvalidListener indicates a nil listener was registered.
	ErrCodeInvalidListener ConfigErrorCode = "INVALID_LISTENER"
)

// ConfigError reports invalid input to a registry operation.
// It is always returned before any mutation happens.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
	AppType string
	AppName string
	Host    string
}

func (e *ConfigError) Error() string {
	switch {
	case e.AppType != "" && e.AppName != "":
		return fmt.Sprintf("%s: %s (app=%s/%s)", e.Code, e.Message, e.AppType, e.AppName)
	case e.AppType != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.AppType)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IntegrityErrorCode categorizes manifest failures.
type IntegrityErrorCode string

const (
	ErrCodeManifestMissing    IntegrityErrorCode = "MANIFEST_MISSING"
	ErrCodeManifestEmpty      IntegrityErrorCode = "MANIFEST_EMPTY"
	ErrCodeManifestUnreadable IntegrityErrorCode = "MANIFEST_UNREADABLE"
	ErrCodeManifestMissingKey IntegrityErrorCode = "MANIFEST_MISSING_KEY"
	ErrCodeManifestBadLength  IntegrityErrorCode = "MANIFEST_BAD_LENGTH"
)

// IntegrityError reports a missing or malformed manifest.
// A partially valid manifest is reported as invalid as a whole.
type IntegrityError struct {
	Code IntegrityErrorCode
	Path string
	Key  string
	Err  error
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Path)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// ImportErrorCode categorizes descriptor load failures.
type ImportErrorCode string

const (
	ErrCodeDescriptorMissing ImportErrorCode = "DESCRIPTOR_MISSING"
	ErrCodeDescriptorSyntax  ImportErrorCode = "DESCRIPTOR_SYNTAX"
	ErrCodeDescriptorInvalid ImportErrorCode = "DESCRIPTOR_INVALID"
	ErrCodeNoContent         ImportErrorCode = "NO_CONTENT"
)

// ImportError reports an app directory that could not be loaded.
// Discovery records it and moves on to the next app.
type ImportError struct {
	Code    ImportErrorCode
	AppType string
	AppName string
	Path    string
	Err     error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Path)
	if e.AppType != "" {
		msg = fmt.Sprintf("%s: %s/%s (%s)", e.Code, e.AppType, e.AppName, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failure to create or open a backing file.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err wraps a ConfigError, optionally with one of codes.
func IsConfigError(err error, codes ...ConfigErrorCode) bool {
	var ce *ConfigError
	if !errors.As(err, &ce) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

// IsIntegrityError reports whether err wraps an IntegrityError, optionally with one of codes.
func IsIntegrityError(err error, codes ...IntegrityErrorCode) bool {
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if ie.Code == c {
			return true
		}
	}
	return false
}

// IsImportError reports whether err wraps an ImportError.
func IsImportError(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie)
}

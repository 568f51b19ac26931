package model

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Code: ErrCodeAppNotAvailable, Message: "not on disk", AppType: "addin", AppName: "dummy"}
	assert.Equal(t, "APP_NOT_AVAILABLE: not on disk (app=addin/dummy)", err.Error())

	err = &ConfigError{Code: ErrCodeUnknownAppType, Message: "no such type", AppType: "nope"}
	assert.Equal(t, "UNKNOWN_APP_TYPE: no such type (type=nope)", err.Error())
}

func TestIsConfigError(t *testing.T) {
	err := fmt.Errorf("enable: %w", &ConfigError{Code: ErrCodeUnknownHost})
	assert.True(t, IsConfigError(err))
	assert.True(t, IsConfigError(err, ErrCodeUnknownHost))
	assert.False(t, IsConfigError(err, ErrCodeAppCorrupted))
	assert.False(t, IsConfigError(errors.New("plain")))
}

func TestIntegrityError_Unwrap(t *testing.T) {
	err := &IntegrityError{Code: ErrCodeManifestMissing, Path: "/x/Manifest", Err: fs.ErrNotExist}
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.True(t, IsIntegrityError(err, ErrCodeManifestMissing))
	assert.False(t, IsIntegrityError(err, ErrCodeManifestEmpty))
	assert.Contains(t, err.Error(), "MANIFEST_MISSING")
}

func TestImportError(t *testing.T) {
	err := &ImportError{Code: ErrCodeDescriptorSyntax, AppType: "addin", AppName: "bad", Path: "/r/bad"}
	assert.True(t, IsImportError(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, "DESCRIPTOR_SYNTAX: addin/bad (/r/bad)", err.Error())
}

package model

import (
	"encoding/hex"
	"fmt"
)

// Manifest keys, one per digest algorithm.
const (
	KeySHA256 = "SHA256"
	KeySHA512 = "SHA512"
	KeyBLAKE3 = "BLAKE3"
)

// Expected hex lengths of each digest.
const (
	LenSHA256 = 64
	LenSHA512 = 128
	LenBLAKE3 = 128
)

// AppType is a category of pluggable app with its own filesystem root.
type AppType struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Digests is the triple of content hashes over an app's source tree.
type Digests struct {
	SHA256 string `json:"sha256" yaml:"SHA256"`
	SHA512 string `json:"sha512" yaml:"SHA512"`
	BLAKE3 string `json:"blake3" yaml:"BLAKE3"`
}

// IsZero reports whether no digest is set.
func (d Digests) IsZero() bool {
	return d.SHA256 == "" && d.SHA512 == "" && d.BLAKE3 == ""
}

// Equal compares all three digests.
func (d Digests) Equal(other Digests) bool {
	return d.SHA256 == other.SHA256 &&
		d.SHA512 == other.SHA512 &&
		d.BLAKE3 == other.BLAKE3
}

// Validate checks that every digest is hex of the expected length.
// The returned error names the first offending key.
func (d Digests) Validate() error {
	fields := []struct {
		key   string
		value string
		size  int
	}{
		{KeySHA256, d.SHA256, LenSHA256},
		{KeySHA512, d.SHA512, LenSHA512},
		{KeyBLAKE3, d.BLAKE3, LenBLAKE3},
	}
	for _, f := range fields {
		if len(f.value) != f.size {
			return fmt.Errorf("%s: expected %d hex chars, got %d", f.key, f.size, len(f.value))
		}
		if _, err := hex.DecodeString(f.value); err != nil {
			return fmt.Errorf("%s: not hex: %w", f.key, err)
		}
	}
	return nil
}

// App is one registered automation app.
type App struct {
	Type        string  `json:"app_type"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Version     string  `json:"version"`
	Description string  `json:"description"`
	Path        string  `json:"path"`
	Digests     Digests `json:"digests"`
}

// AppListItem is one row of the app × host enablement view.
type AppListItem struct {
	AppType string `json:"app_type"`
	AppName string `json:"app_name"`
	Host    string `json:"com_app"`
	Enabled bool   `json:"enabled"`
}

// ListFilter narrows the enablement view. Nil fields do not filter.
type ListFilter struct {
	AppType *string
	AppName *string
	Host    *string
	Enabled *bool
}

// IsEmpty reports whether the filter matches everything.
func (f ListFilter) IsEmpty() bool {
	return f.AppType == nil && f.AppName == nil && f.Host == nil && f.Enabled == nil
}

// Ptr returns a pointer to v. Handy for building a ListFilter.
func Ptr[T any](v T) *T {
	return &v
}

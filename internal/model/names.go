package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// HostName returns the canonical form of a host short name.
// Host names are case-insensitive: "Excel", "EXCEL" and "excel" are one host.
func HostName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// HostNames canonicalises a list, dropping empties and duplicates.
// Order of first appearance is kept.
func HostNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		h := HostName(s)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// AppName normalises an app directory name to NFC so the same name
// written by different filesystems compares equal.
func AppName(s string) string {
	return norm.NFC.String(s)
}

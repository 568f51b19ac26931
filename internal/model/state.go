package model

import "fmt"

// IntegrityState classifies an app's source tree against its recorded digests.
type IntegrityState string

const (
	StateUnknown   IntegrityState = ""
	StateUnchanged IntegrityState = "unchanged"
	StateUpdated   IntegrityState = "updated"
	StateCorrupted IntegrityState = "corrupted"
)

// Mode is the trust policy of an app: signed (user) or unsigned (dev).
type Mode string

const (
	ModeUnknown Mode = ""
	ModeDev     Mode = "devmode"
	ModeUser    Mode = "usermode"
)

// LinkPolicy decides what happens to host enablement when an app is updated.
type LinkPolicy string

const (
	// LinkPolicyReset drops every link and re-creates the declared ones
	// disabled. An updated app must be re-approved for each host.
	LinkPolicyReset LinkPolicy = "reset"

	// LinkPolicyPreserve keeps the enabled flag for hosts the app still
	// declares. Newly declared hosts start disabled.
	LinkPolicyPreserve LinkPolicy = "preserve"
)

// ParseLinkPolicy converts a configuration string. Empty means reset.
func ParseLinkPolicy(s string) (LinkPolicy, error) {
	switch LinkPolicy(s) {
	case "", LinkPolicyReset:
		return LinkPolicyReset, nil
	case LinkPolicyPreserve:
		return LinkPolicyPreserve, nil
	default:
		return "", fmt.Errorf("invalid link policy %q (must be %q or %q)", s, LinkPolicyReset, LinkPolicyPreserve)
	}
}

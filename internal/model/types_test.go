package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDigests() Digests {
	return Digests{
		SHA256: strings.Repeat("a", LenSHA256),
		SHA512: strings.Repeat("b", LenSHA512),
		BLAKE3: strings.Repeat("c", LenBLAKE3),
	}
}

func TestDigests_Validate(t *testing.T) {
	require.NoError(t, validDigests().Validate())

	tests := []struct {
		name   string
		mutate func(*Digests)
		key    string
	}{
		{"short sha256", func(d *Digests) { d.SHA256 = d.SHA256[1:] }, KeySHA256},
		{"long sha512", func(d *Digests) { d.SHA512 += "0" }, KeySHA512},
		{"empty blake3", func(d *Digests) { d.BLAKE3 = "" }, KeyBLAKE3},
		{"non hex", func(d *Digests) { d.SHA256 = strings.Repeat("z", LenSHA256) }, KeySHA256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDigests()
			tt.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestDigests_EqualAndZero(t *testing.T) {
	a := validDigests()
	b := validDigests()
	assert.True(t, a.Equal(b))
	assert.False(t, a.IsZero())
	assert.True(t, Digests{}.IsZero())

	b.BLAKE3 = strings.Repeat("d", LenBLAKE3)
	assert.False(t, a.Equal(b))
}

func TestListFilter_IsEmpty(t *testing.T) {
	assert.True(t, ListFilter{}.IsEmpty())
	assert.False(t, ListFilter{Enabled: Ptr(false)}.IsEmpty())
	assert.False(t, ListFilter{Host: Ptr("excel")}.IsEmpty())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "already_exists", OutcomeAlreadyExists.String())
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.True(t, OutcomeCreated.Changed())
	assert.True(t, OutcomeDeleted.Changed())
	assert.False(t, OutcomeFound.Changed())
	assert.False(t, OutcomeNotFound.Changed())
}

func TestParseLinkPolicy(t *testing.T) {
	p, err := ParseLinkPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LinkPolicyReset, p)

	p, err = ParseLinkPolicy("preserve")
	require.NoError(t, err)
	assert.Equal(t, LinkPolicyPreserve, p)

	_, err = ParseLinkPolicy("keep")
	assert.Error(t, err)
}

func TestHostNames(t *testing.T) {
	assert.Equal(t, "excel", HostName("  EXCEL "))
	assert.Equal(t, []string{"excel", "word"}, HostNames([]string{"Excel", "word", "", "EXCEL"}))
	// Composed and decomposed é are one name.
	assert.Equal(t, AppName("caf\u00e9"), AppName("cafe\u0301"))
}

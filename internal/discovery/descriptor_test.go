package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transition/internal/model"
)

const dummyDescriptor = `// Purpose: dummy app for tests
// Author: Jane Doe
// Version: 1.0

entry:   "DummyApp"
com_app: ["Excel", "word", "excel"]
`

func writeDescriptor(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DescriptorName), []byte(content), 0o644))
}

func TestCUELoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, dummyDescriptor)

	desc, err := CUELoader{}.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "DummyApp", desc.Entry)
	assert.Equal(t, []string{"excel", "word"}, desc.Hosts)
	assert.Equal(t, "Purpose: dummy app for tests\nAuthor: Jane Doe\nVersion: 1.0", desc.Description)
}

func TestCUELoader_DocCommentAttachedToField(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "// Author: A\n// Version: 2\nentry: \"X\" // trailing\ncom_app: []\n")

	desc, err := CUELoader{}.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Author: A\nVersion: 2", desc.Description)
	assert.Empty(t, desc.Hosts)
}

func TestCUELoader_NoComment(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "entry: \"X\"\ncom_app: [\"word\"]\n")

	desc, err := CUELoader{}.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "", desc.Description)
}

func TestCUELoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		code    model.ImportErrorCode
	}{
		{"missing descriptor", nil, model.ErrCodeDescriptorMissing},
		{"syntax error", model.Ptr("entry: \"X\nbroken {{"), model.ErrCodeDescriptorSyntax},
		{"conflicting values", model.Ptr("entry: \"X\"\nentry: \"Y\"\ncom_app: []\n"), model.ErrCodeDescriptorInvalid},
		{"missing com_app", model.Ptr("entry: \"X\"\n"), model.ErrCodeDescriptorInvalid},
		{"missing entry", model.Ptr("com_app: [\"excel\"]\n"), model.ErrCodeDescriptorInvalid},
		{"com_app not a list", model.Ptr("entry: \"X\"\ncom_app: \"excel\"\n"), model.ErrCodeDescriptorInvalid},
		{"com_app of ints", model.Ptr("entry: \"X\"\ncom_app: [1, 2]\n"), model.ErrCodeDescriptorInvalid},
		{"bad entry name", model.Ptr("entry: \"not valid!\"\ncom_app: []\n"), model.ErrCodeDescriptorInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != nil {
				writeDescriptor(t, dir, *tt.content)
			}
			_, err := CUELoader{}.Load(dir)
			require.Error(t, err)

			var ie *model.ImportError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.code, ie.Code, "error: %v", err)
		})
	}
}

func TestParseInfo(t *testing.T) {
	description := `
	#
	# Author: Jonathan
	# Author: Besanceney
	#
	# Version: 1.0
	# Version: 2.0
	`
	author, version := ParseInfo(description)
	assert.Equal(t, "Jonathan\nBesanceney", author)
	assert.Equal(t, "1.0", version)

	author, version = ParseInfo("Author: Jane Doe\nVersion: 3")
	assert.Equal(t, "Jane Doe", author)
	assert.Equal(t, "3", version)

	author, version = ParseInfo("")
	assert.Empty(t, author)
	assert.Empty(t, version)
}

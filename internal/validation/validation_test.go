package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Docs"))
	assert.NoError(t, ValidateName("  padded  "))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("a", MaxNameLength+1)))
}

func TestValidateFolderCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"1234", false},
		{"abcd", false},
		{"ééé1", false},
		{"", true},
		{"12", true},
		{"12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateFolderCode(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse battery"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("mypassword-is-long"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("al ice"))
}

func TestValidateUploadSize(t *testing.T) {
	assert.NoError(t, ValidateUploadSize(0, 1<<20))
	assert.NoError(t, ValidateUploadSize(1<<20, 1<<20))
	assert.Error(t, ValidateUploadSize(1<<20+1, 1<<20))
	assert.Error(t, ValidateUploadSize(-1, 1<<20))
	assert.NoError(t, ValidateUploadSize(1<<40, 0))
}

func TestDetectMimeType(t *testing.T) {
	t.Run("declared wins", func(t *testing.T) {
		got, err := DetectMimeType("a.bin", "video/mp4", nil)
		require.NoError(t, err)
		assert.Equal(t, "video/mp4", got)
	})

	t.Run("extension", func(t *testing.T) {
		got, err := DetectMimeType("photo.PNG", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "image/png", got)
	})

	t.Run("sniffed and rewound", func(t *testing.T) {
		r := bytes.NewReader([]byte("%PDF-1.7 rest of document"))
		got, err := DetectMimeType("noext", "application/octet-stream", r)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", got)

		rest, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 rest of document", string(rest))
	})

	t.Run("empty content", func(t *testing.T) {
		got, err := DetectMimeType("noext", "", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", got)
	})
}

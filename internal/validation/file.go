package validation

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/templui/filebox/internal/model"
)

// ValidateUploadSize rejects payloads above max bytes. max <= 0 disables the limit.
func ValidateUploadSize(size, max int64) error {
	if size < 0 {
		return fmt.Errorf("invalid file size")
	}

	if max > 0 && size > max {
		return fmt.Errorf("file too large: maximum size is %d MB", max/(1<<20))
	}

	return nil
}

// DetectMimeType returns the declared type when it is specific, otherwise the
// type guessed from the file extension or the first 512 bytes of content.
// The reader is rewound before returning.
func DetectMimeType(name, declared string, r io.ReadSeeker) (string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != model.DefaultMimeType {
		return declared, nil
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt, nil
	}

	if r == nil {
		return model.DefaultMimeType, nil
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = r.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	if n == 0 {
		return model.DefaultMimeType, nil
	}

	return http.DetectContentType(buffer[:n]), nil
}

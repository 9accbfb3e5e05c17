package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Size bounds for uploaded statement files. Anything under MinFileSize is
// too small to hold a header plus one row; anything over MaxFileSize is
// rejected before parsing to bound memory use.
const (
	DefaultMinFileSize = 100
	DefaultMaxFileSize = 10 << 20
)

var supportedExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xls":  true,
	".xlsx": true,
	".pdf":  true,
}

// Validator pre-checks uploaded files before they reach the parse pipeline.
type Validator struct {
	MinSize int64
	MaxSize int64
}

// NewValidator returns a validator with the default size bounds.
func NewValidator() *Validator {
	return &Validator{MinSize: DefaultMinFileSize, MaxSize: DefaultMaxFileSize}
}

// Validate rejects files with unsupported extensions or out-of-bounds sizes.
func (v *Validator) Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !supportedExtensions[ext] {
		return fmt.Errorf("unsupported file type %q, expected one of: %s", ext, strings.Join(SupportedExtensions(), ", "))
	}
	if size < v.MinSize {
		return fmt.Errorf("file %q too small (%d bytes, minimum %d)", name, size, v.MinSize)
	}
	if size > v.MaxSize {
		return fmt.Errorf("file %q too large (%d bytes, maximum %d)", name, size, v.MaxSize)
	}
	return nil
}

// SupportedExtensions lists accepted extensions in a stable order.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".xls", ".xlsx", ".pdf"}
}

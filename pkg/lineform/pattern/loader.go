package pattern

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// sanitizePathError removes the path from os.PathError to prevent information
// leakage. This ensures error messages don't expose file system paths to users.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and parses a pattern document from the given path.
// Returns an error if the file cannot be read, is too large, or fails
// validation.
//
// Security: This function protects against FIFO/device file DoS attacks by:
//   - Opening the file and stat-ing the file descriptor (avoiding TOCTOU)
//   - Rejecting non-regular files (FIFO, device, socket, etc.)
//   - Using io.LimitReader to enforce size limits during read
//
// Example:
//
//	doc, err := pattern.Load("invoice.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load pattern document: %v", err)
//	}
func Load(path string) (*Document, error) {
	// Open file first (don't use os.ReadFile which doesn't check file type)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern document: %w", sanitizePathError(err))
	}
	defer f.Close()

	// Stat the file descriptor (not the path) to avoid TOCTOU
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pattern document: %w", sanitizePathError(err))
	}

	if !info.Mode().IsRegular() {
		return nil, errors.New("pattern document must be a regular file (not FIFO, device, or special file)")
	}

	if info.Size() == 0 {
		return nil, errors.New("pattern document is empty")
	}
	if info.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("pattern document too large: %d bytes (max %d)", info.Size(), MaxDocumentSize)
	}

	// Read MaxDocumentSize+1 to detect if the file grows beyond the limit
	// between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern document: %w", sanitizePathError(err))
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("pattern document too large: %d bytes (max %d)", len(data), MaxDocumentSize)
	}

	return LoadBytes(data)
}

// LoadBytes parses a pattern document from a byte slice.
// Returns an error if the data cannot be parsed or fails validation.
//
// Example:
//
//	data := []byte("version: 1\nname: demo\nelements:\n  ...")
//	doc, err := pattern.LoadBytes(data)
func LoadBytes(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("pattern document is empty")
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("pattern document too large: %d bytes (max %d)", len(data), MaxDocumentSize)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

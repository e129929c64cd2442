// Package safefile provides security-hardened file operations.
package safefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRegularFile is returned when attempting to open a file that is not a regular file.
// This includes symlinks, FIFOs, devices, sockets, and directories.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens a file and verifies it is a regular file.
// This mitigates TOCTOU (time-of-check-time-of-use) race conditions where a file
// could be replaced with a symlink or special file between stat and open operations.
//
// The function:
//  1. Uses os.Lstat() to check the path without following symlinks
//  2. Opens the file
//  3. Stats the file descriptor to verify it's the same file
//
// Note: There is still a small TOCTOU window between Lstat and Open, but this is
// significantly better than the previous pattern of Lstat in one location and Open
// in another. Go's standard library doesn't expose O_NOFOLLOW in a cross-platform way.
//
// Returns:
//   - (*os.File, os.FileInfo, nil) on success
//   - (nil, nil, error) on failure (file closed automatically)
//
// The caller must close the returned file when done.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	// First, lstat the path to detect symlinks
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}

	// Reject symlinks, FIFOs, devices, sockets, directories
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	// Open the file
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	// Stat the file descriptor to verify it's the same file
	// This catches if the file was replaced between Lstat and Open
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	// Verify still a regular file
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	// On Unix systems, we can check if it's the same file by comparing inode
	// However, os.FileInfo doesn't expose inode in a cross-platform way,
	// so we just verify it's still regular. The Lstat check above prevents
	// the most common symlink attacks.

	return f, info, nil
}

// WriteFileAtomic writes data to path so that readers never observe a
// partially written file. The data is written to a temporary file in the
// same directory, synced, and renamed into place; rename within one
// directory is atomic on POSIX file systems.
//
// On any error the temporary file is removed and the previous content of
// path, if any, is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on every failure path.
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

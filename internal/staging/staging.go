// Package staging implements the filesystem half of the build pipeline:
// removing previous artifacts and copying distributables into the output
// directory.
package staging

import (
	"io"
	"os"
	"path/filepath"
)

// Clean removes previous build artifacts: the dist directory, the packager
// work directory, and any *.spec descriptor files left in the project root.
// Missing targets are not errors; deletion is best-effort and idempotent.
func Clean(projectDir, distDir, workDir string) error {
	for _, dir := range []string{distDir, workDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(projectDir, dir)); err != nil {
			return err
		}
	}

	specs, err := filepath.Glob(filepath.Join(projectDir, "*.spec"))
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := os.Remove(spec); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CopyFile copies a single file from src to dst, preserving permissions.
// Existing destination files are overwritten.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	// Preserve file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}

// CopyDir recursively copies a directory tree. Files already present under
// dst are overwritten; extra files in dst are left alone.
func CopyDir(src, dst string) error {
	// Get properties of source dir
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	// Create destination directory
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	// Read all directory contents
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			// Recursively copy subdirectory
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			// Copy file
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// Exists reports whether the path exists (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package usecase

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/model"
)

// extractZipball extracts a commit zipball into a fresh temporary workspace
func extractZipball(data []byte) (*model.CheckoutResult, error) {
	tempDir, err := os.MkdirTemp("", "loom-workspace-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create workspace directory")
	}

	if err := os.Chmod(tempDir, 0700); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to set workspace permissions", goerr.V("dir", tempDir))
	}

	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to read zipball")
	}

	var files []string
	var totalSize int64
	for _, file := range zipReader.File {
		if err := extractFile(file, tempDir); err != nil {
			_ = os.RemoveAll(tempDir)
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("file", file.Name))
		}
		files = append(files, file.Name)
		totalSize += int64(file.UncompressedSize64)
	}

	return &model.CheckoutResult{
		Dir:   tempDir,
		Files: files,
		Size:  totalSize,
	}, nil
}

// extractFile extracts a single zip entry into the workspace
func extractFile(file *zip.File, destDir string) error {
	// Reject path traversal in archive entries
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path in archive",
			goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open archive entry")
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories")
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file")
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content")
	}
	return nil
}

// workspaceRoot returns the directory job steps run in. GitHub zipballs wrap
// the tree in a single "<repo>-<sha>" directory; when exactly one top-level
// directory exists, that is the root.
func workspaceRoot(result *model.CheckoutResult) string {
	entries, err := os.ReadDir(result.Dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return result.Dir
	}
	return filepath.Join(result.Dir, entries[0].Name())
}

func removeWorkspace(dir string) error {
	return os.RemoveAll(dir)
}

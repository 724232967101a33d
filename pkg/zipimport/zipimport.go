// Package zipimport extracts a downloaded dataset-version archive into a local directory
// for the SHARE operation's traversal step. Grounded on the source's
// zipfile.ZipFile(...).extractall call, adapted to archive/zip with klauspost/compress's
// faster flate implementation registered as the deflate decompressor (the same technique
// the ecosystem uses to speed up archive/zip without changing its public API).
package zipimport

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

func init() {
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// Extract unpacks every entry of the zip archive at archivePath into destDir, which must
// already exist. Entry paths are cleaned and confined to destDir to reject a zip-slip
// archive.
func Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrapf(err, "error opening archive %q", archivePath)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return errors.Wrapf(err, "error extracting %q", f.Name)
		}
	}
	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return errors.Errorf("illegal file path in archive: %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

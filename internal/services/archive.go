package services

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveBuilder bundles the outputs of one generation event into a
// single zip. Directory structure is flattened: entries are named by the
// base name of each input file.
type ArchiveBuilder struct{}

func NewArchiveBuilder() *ArchiveBuilder {
	return &ArchiveBuilder{}
}

// Bundle writes archiveName into outputDir containing every input file.
// Fails if any input path does not exist at archive time.
func (b *ArchiveBuilder) Bundle(filePaths []string, outputDir, archiveName string) (string, error) {
	archivePath := filepath.Join(outputDir, archiveName)

	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for _, path := range filePaths {
		if err := b.addFile(zw, path); err != nil {
			zw.Close()
			os.Remove(archivePath)
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return archivePath, nil
}

func (b *ArchiveBuilder) addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", path, err)
	}
	defer src.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s into archive: %w", path, err)
	}
	return nil
}

package batch

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
)

// BuildArchive packs artifacts into a flat zip, PNG then PDF for each, in the
// order given.
func BuildArchive(artifacts []*renderer.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, artifact := range artifacts {
		entries := []struct {
			name string
			data []byte
		}{
			{artifact.Stem + ".png", artifact.PNG},
			{artifact.Stem + ".pdf", artifact.PDF},
		}

		for _, entry := range entries {
			w, err := zipWriter.CreateHeader(&zip.FileHeader{Name: entry.name, Method: zip.Deflate})
			if err != nil {
				return nil, fmt.Errorf("failed to create ZIP entry %s: %w", entry.name, err)
			}
			if _, err := w.Write(entry.data); err != nil {
				return nil, fmt.Errorf("failed to write ZIP entry %s: %w", entry.name, err)
			}
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ZIP writer: %w", err)
	}

	return buf.Bytes(), nil
}

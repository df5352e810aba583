// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// ExportZip writes images into a deflated ZIP archive. Entries are named
// <name>_<n><ext>, numbered from 1 in the given order.
func ExportZip(w io.Writer, images []Unlocked) error {
	zw := zip.NewWriter(w)
	for i, u := range images {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:   fmt.Sprintf("%s_%d%s", u.Image.Name, i+1, u.Ext),
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("adding %s: %w", u.FileName(), err)
		}
		if _, err := f.Write(u.Data); err != nil {
			return fmt.Errorf("writing %s: %w", u.FileName(), err)
		}
	}
	return zw.Close()
}

// Save writes unlocked images to path: a single image as a plain file,
// several as a ZIP archive.
func Save(path string, images []Unlocked) error {
	switch len(images) {
	case 0:
		return fmt.Errorf("no images to save")
	case 1:
		return os.WriteFile(path, images[0].Data, 0o600)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err := ExportZip(f, images); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

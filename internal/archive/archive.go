package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Ext is the archive file extension.
const Ext = ".zip"

// PathFor returns where the archive for deckName lives under root.
func PathFor(root, deckName string) string {
	return filepath.Join(root, deckName+Ext)
}

// Create zips root/deckName into root/deckName.zip. Entry names are relative
// to root, so every entry starts with "deckName/".
func Create(root, deckName string) (string, error) {
	src := filepath.Join(root, deckName)
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat deck directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", src)
	}

	dest := PathFor(root, deckName)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	if err := writeTree(out, root, src); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return dest, nil
}

func writeTree(w io.Writer, root, src string) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		if d.IsDir() {
			header.Name = name + "/"
			_, err := zw.CreateHeader(header)
			return err
		}
		header.Name = name
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("archive %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

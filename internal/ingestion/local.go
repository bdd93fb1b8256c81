package ingestion

import (
	"io/fs"
	"path/filepath"
)

// LoadLocalFiles walks root and returns every file with a supported
// extension, in lexical order.
func LoadLocalFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && supported(filepath.Ext(path)) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

package store

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage reports the on-disk size in bytes of each data directory, keyed by
// stage name. Missing directories report zero; the status command prints this.
func (s *Store) Usage() (map[string]int64, error) {
	usage := make(map[string]int64, 3)
	for stage, dir := range map[string]string{
		"raw":       s.rawDir,
		"processed": s.processedDir,
		"chunks":    s.chunksDir,
	} {
		n, err := treeSize(dir)
		if err != nil {
			return nil, err
		}
		usage[stage] = n
	}
	return usage, nil
}

func treeSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return total, nil
}

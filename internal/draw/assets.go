package draw

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// AssetPool is the sorted list of files available for one category directory
type AssetPool struct {
	Dir   string
	Files []string
}

// LoadAssetPools scans every directory referenced by the configuration once.
// Missing directories produce empty pools; the defect surfaces when a draw
// lands on one.
func LoadAssetPools(fsys fs.FS, cfg Config) (map[string]*AssetPool, error) {
	dirs := map[string]bool{}
	for _, dir := range cfg.Categories {
		dirs[dir] = true
	}
	for _, co := range cfg.Cohorts {
		for _, dir := range co.Assets {
			dirs[dir] = true
		}
	}

	pools := make(map[string]*AssetPool, len(dirs))
	for dir := range dirs {
		pool, err := scanDir(fsys, dir)
		if err != nil {
			return nil, err
		}
		pools[dir] = pool
	}
	return pools, nil
}

func scanDir(fsys fs.FS, dir string) (*AssetPool, error) {
	pool := &AssetPool{Dir: dir}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pool, nil
		}
		return nil, fmt.Errorf("failed to read asset directory %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !AssetExtensions[strings.ToLower(path.Ext(e.Name()))] {
			continue
		}
		pool.Files = append(pool.Files, path.Join(dir, e.Name()))
	}
	sort.Strings(pool.Files)
	return pool, nil
}

// Sample picks one file from the pool using rnd in [0,1)
func (p *AssetPool) Sample(category string, rnd float64) (string, error) {
	if p == nil || len(p.Files) == 0 {
		dir := ""
		if p != nil {
			dir = p.Dir
		}
		return "", &domain.ConfigurationDefectError{Category: category, Reason: fmt.Sprintf("asset pool %q is empty", dir)}
	}
	idx := int(rnd * float64(len(p.Files)))
	if idx >= len(p.Files) {
		idx = len(p.Files) - 1
	}
	return p.Files[idx], nil
}

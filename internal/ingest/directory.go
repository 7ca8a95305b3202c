package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
)

// DirStats summarizes one directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Loaded  uint32
	Failed  uint32
}

// LoadFile reads one file into a RawFile with its content pre-loaded.
func LoadFile(path string) (entity.RawFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return entity.RawFile{}, fmt.Errorf("read file: %w", err)
	}
	return entity.RawFile{
		Name:      filepath.Base(path),
		Path:      path,
		Extension: constants.NormalizeExt(filepath.Ext(path)),
		Content:   content,
	}, nil
}

// LoadDirectory walks root, filters by includeExts (or the defaults), skips
// hidden entries, and pre-loads each matching file. A single unreadable file
// never aborts the scan.
func LoadDirectory(root string, includeExts []string) ([]entity.RawFile, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = constants.AllowedExtensions
	} else {
		for _, e := range includeExts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var files []entity.RawFile
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++

		rf, err := LoadFile(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		files = append(files, rf)
		stats.Loaded++
		return nil
	})
	if err != nil {
		return files, stats, fmt.Errorf("walk: %w", err)
	}
	return files, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

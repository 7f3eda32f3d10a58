package analyzer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"pycheck/internal/config"
	"pycheck/internal/parser"
)

// CollectFiles expands paths into the Python files to analyze. Files named
// explicitly are kept as long as they have a Python extension; directories
// are walked and filtered with the configured include/exclude patterns.
func CollectFiles(cfg *config.Config, paths []string) ([]string, error) {
	include, err := config.CompileGlobs(cfg.Files.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := config.CompileGlobs(cfg.Files.Exclude)
	if err != nil {
		return nil, err
	}

	c := &collector{
		cfg:     cfg,
		include: include,
		exclude: exclude,
		seen:    make(map[string]bool),
		visited: make(map[string]bool),
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			if parser.IsPythonFile(path) {
				c.add(path)
			}
			continue
		}
		if err := c.walk(path); err != nil {
			return nil, err
		}
	}

	sort.Strings(c.files)
	return c.files, nil
}

type collector struct {
	cfg     *config.Config
	include []glob.Glob
	exclude []glob.Glob
	files   []string
	seen    map[string]bool
	visited map[string]bool
}

func (c *collector) add(path string) {
	clean := filepath.Clean(path)
	if c.seen[clean] {
		return
	}
	c.seen[clean] = true
	c.files = append(c.files, clean)
}

func (c *collector) walk(root string) error {
	if real, err := filepath.EvalSymlinks(root); err == nil {
		if c.visited[real] {
			return nil
		}
		c.visited[real] = true
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && matchAny(c.exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !c.cfg.Files.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil {
				slog.Debug("skipping broken symlink", "path", path, "error", err)
				return nil
			}
			if target.IsDir() {
				if matchAny(c.exclude, rel+"/") {
					return nil
				}
				return c.walk(path)
			}
		}

		if !parser.IsPythonFile(path) || !matchAny(c.include, rel) || matchAny(c.exclude, rel) {
			return nil
		}
		if limit := int64(c.cfg.Files.MaxFileSize) * 1024; limit > 0 {
			if info, err := os.Stat(path); err == nil && info.Size() > limit {
				slog.Debug("skipping large file", "path", path, "size", info.Size())
				return nil
			}
		}
		c.add(path)
		return nil
	})
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

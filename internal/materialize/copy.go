package materialize

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/logging"
	"github.com/malston/tkgi-pipeline-standards/internal/platform"
	"github.com/malston/tkgi-pipeline-standards/internal/render"
	"github.com/malston/tkgi-pipeline-standards/internal/source"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 1024

// Mode controls what happens when a destination file already exists.
type Mode int

const (
	// Overwrite replaces existing destination files.
	Overwrite Mode = iota
	// KeepExisting leaves existing destination files untouched.
	KeepExisting
)

func (m Mode) String() string {
	if m == KeepExisting {
		return "keep-existing"
	}
	return "overwrite"
}

// excludedNames are never copied, at any depth.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// Stats records what a single CopyTree call did. Paths are relative to the
// destination and slash-separated.
type Stats struct {
	Written           []string
	Kept              []string
	SkippedCategories []string
	Warnings          []string
}

// Copier copies template trees, rendering text files on the way.
type Copier struct {
	fs       afero.Fs
	ctx      render.Context
	tmplType templatetype.Type
	logger   zerolog.Logger
}

// NewCopier creates a Copier for one template type.
func NewCopier(fs afero.Fs, ctx render.Context, t templatetype.Type) *Copier {
	return &Copier{
		fs:       fs,
		ctx:      ctx,
		tmplType: t,
		logger:   logging.Get("materialize"),
	}
}

// CopyTree merges src into dst. Task category directories that belong to
// other template types are skipped. An unreadable source file becomes a
// warning; any failure to write the destination is returned and aborts the
// copy, leaving what was already written in place.
func (c *Copier) CopyTree(src, dst string, mode Mode) (*Stats, error) {
	ok, err := afero.DirExists(c.fs, src)
	if err != nil {
		return nil, fmt.Errorf("checking source %s: %w", src, err)
	}
	if !ok {
		return nil, fmt.Errorf("source %s is not a directory", src)
	}
	if err := c.fs.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dst, err)
	}

	c.logger.Debug().Str("src", src).Str("dst", dst).Stringer("mode", mode).Msg("copying template tree")

	stats := &Stats{}
	if err := c.copyDir(src, dst, "", mode, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (c *Copier) copyDir(src, dst, rel string, mode Mode, stats *Stats) error {
	dir := filepath.Join(src, filepath.FromSlash(rel))
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		c.warn(stats, fmt.Sprintf("Could not read directory %s: %v", displayRel(rel), err))
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if excludedNames[name] || (rel == "" && name == source.ManifestFile) {
			continue
		}

		childRel := path.Join(rel, name)
		dstPath := filepath.Join(dst, filepath.FromSlash(childRel))

		switch {
		case entry.IsDir():
			if rel == templatetype.TasksRoot && !templatetype.IsCategoryAllowed(c.tmplType, name) {
				c.logger.Debug().Str("category", name).Msg("skipping task category for other template type")
				stats.SkippedCategories = append(stats.SkippedCategories, name)
				continue
			}
			if err := c.fs.MkdirAll(dstPath, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dstPath, err)
			}
			if err := c.copyDir(src, dst, childRel, mode, stats); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := c.copyFile(filepath.Join(src, filepath.FromSlash(childRel)), dstPath, childRel, entry, mode, stats); err != nil {
				return err
			}
		default:
			// Symlinks and special files are not part of a template.
			c.logger.Debug().Str("path", childRel).Msg("skipping non-regular file")
		}
	}
	return nil
}

func (c *Copier) copyFile(srcPath, dstPath, rel string, info os.FileInfo, mode Mode, stats *Stats) error {
	existing, err := c.fs.Stat(dstPath)
	exists := err == nil
	if exists && mode == KeepExisting {
		stats.Kept = append(stats.Kept, rel)
		return nil
	}

	data, err := afero.ReadFile(c.fs, srcPath)
	if err != nil {
		c.warn(stats, fmt.Sprintf("Could not read %s: %v", rel, err))
		return nil
	}

	if !IsBinary(data) {
		text := string(data)
		for _, name := range render.Unresolved(text, c.ctx) {
			c.logger.Debug().Str("file", rel).Str("variable", name).Msg("unresolved template variable")
		}
		data = []byte(render.Render(text, c.ctx))
	}

	perm := info.Mode().Perm()
	if exists {
		perm = existing.Mode().Perm()
	}
	perm |= info.Mode().Perm() & platform.ExecBits

	if err := afero.WriteFile(c.fs, dstPath, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", dstPath, err)
	}
	if err := platform.Chmod(c.fs, dstPath, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", dstPath, err)
	}

	stats.Written = append(stats.Written, rel)
	return nil
}

func (c *Copier) warn(stats *Stats, msg string) {
	c.logger.Warn().Msg(msg)
	stats.Warnings = append(stats.Warnings, msg)
}

// IsBinary reports whether data has a NUL byte within its first 1024 bytes.
func IsBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func displayRel(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

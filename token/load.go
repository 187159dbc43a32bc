package token

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Loader discovers and decodes token definition files.
type Loader struct {
	fsys fs.FS
	log  *zap.Logger
}

// NewLoader creates loader reading files from fsys.
func NewLoader(fsys fs.FS, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fsys: fsys, log: log.Named("loader")}
}

// Find returns files matching glob pattern (doublestar syntax) in natural
// order, so "spacing-2" goes before "spacing-10".
func (l *Loader) Find(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("bad token file pattern %q", pattern)
	}
	matches, err := doublestar.Glob(l.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("unable to match token files with %q: %w", pattern, err)
	}
	sort.Sort(natural.StringSlice(matches))
	return matches, nil
}

// Load reads all files matching pattern into a single store for category.
// Records from several files are concatenated in file order and must have
// unique names across all of them. When nothing matches nil store is
// returned without error: absent category is not a loading problem.
func (l *Loader) Load(category, pattern string) (*Store, error) {
	files, err := l.Find(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		l.log.Debug("No token files found", zap.String("category", category), zap.String("pattern", pattern))
		return nil, nil
	}

	var records []Record
	for _, name := range files {
		format := FormatFromPath(name)
		if format == FormatUnknown {
			l.log.Warn("Skipping token file of unknown format", zap.String("category", category), zap.String("file", name))
			continue
		}
		data, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("unable to read token file %q: %w", name, err)
		}
		recs, err := decodeRecords(data, format)
		if err != nil {
			return nil, fmt.Errorf("unable to decode token file %q: %w", name, err)
		}
		l.log.Debug("Loaded token file", zap.String("category", category), zap.String("file", name), zap.Stringer("format", format), zap.Int("records", len(recs)))
		records = append(records, recs...)
	}

	store, err := NewStore(category, records...)
	if err != nil {
		return nil, fmt.Errorf("invalid tokens in %v: %w", files, err)
	}
	return store, nil
}

// LoadViewports reads viewport breakpoints from a single file.
func (l *Loader) LoadViewports(name string) (Viewports, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Viewports{}, fmt.Errorf("unable to read viewports file %q: %w", name, err)
	}
	vp, err := DecodeViewports(data, FormatFromPath(name))
	if err != nil {
		return Viewports{}, fmt.Errorf("bad viewports file %q: %w", name, err)
	}
	l.log.Debug("Loaded viewports", zap.String("file", name), zap.Int("min", vp.Min), zap.Int("mid", vp.Mid), zap.Int("max", vp.Max))
	return vp, nil
}

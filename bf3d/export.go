package bf3d

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Mode selects which top-level entity an export writes.
type Mode int

const (
	ModeModel Mode = iota
	ModeHierarchy
	ModeAnimation
)

func (m Mode) String() string {
	switch m {
	case ModeModel:
		return "model"
	case ModeHierarchy:
		return "hierarchy"
	case ModeAnimation:
		return "animation"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "model", "m":
		return ModeModel, nil
	case "hierarchy", "skeleton", "h":
		return ModeHierarchy, nil
	case "animation", "a":
		return ModeAnimation, nil
	}
	return 0, errors.Errorf("unknown export mode %q", s)
}

// Scene is the extracted content of one source scene.
type Scene struct {
	SkeletonName string
	Model        *Model
	Hierarchy    *Hierarchy
	Animation    *Animation
}

// SceneName returns the base name of path without its extension.
func SceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HierarchyPath substitutes the skeleton name for the base name of path.
// Only the last element of a skeleton name containing separators is used.
func HierarchyPath(path, skeleton string) string {
	base := filepath.Base(filepath.FromSlash(skeleton))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return path
	}
	return filepath.Join(filepath.Dir(path), base+filepath.Ext(path))
}

// ExportFile writes the entity selected by mode and returns the path of the
// written file. A failed write leaves the partial file in place.
func (e *Encoder) ExportFile(path string, mode Mode, sc *Scene) (string, error) {
	var entity Entity
	name := SceneName(path)
	switch mode {
	case ModeModel:
		if sc.Model != nil {
			entity = sc.Model
		}
	case ModeHierarchy:
		if sc.Hierarchy != nil {
			entity = sc.Hierarchy
		}
		if sc.SkeletonName == "" {
			e.log.Warn("no skeleton name, hierarchy keeps the scene file name", zap.String("path", path))
		} else {
			path = HierarchyPath(path, sc.SkeletonName)
			name = sc.SkeletonName
		}
	case ModeAnimation:
		if sc.Animation != nil {
			entity = sc.Animation
		}
	default:
		return "", errors.Errorf("unknown export mode %v", mode)
	}
	if entity == nil {
		return "", errors.Errorf("scene has no %v to export", mode)
	}

	if err := e.writeFile(path, name, entity); err != nil {
		return path, errors.Wrapf(err, "export %v to %s", mode, path)
	}
	e.log.Info("exported",
		zap.Stringer("mode", mode),
		zap.String("path", path),
		zap.Int("bytes", EncodedLen(name, entity)))
	return path, nil
}

func (e *Encoder) writeFile(path, name string, entity Entity) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close")
		}
	}()

	w := bufio.NewWriter(f)
	if err := e.Encode(w, name, entity); err != nil {
		// keep what was encoded so far; the encode error is the one reported
		_ = w.Flush()
		return err
	}
	return errors.Wrap(w.Flush(), "flush")
}

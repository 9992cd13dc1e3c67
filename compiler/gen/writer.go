package gen

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Writer commits a FileSet under an output root. All files land in a
// staging directory next to the root first; the staged tree is then
// swapped into place, so a failed run never leaves the root half
// written and an unchanged input produces a byte-identical tree.
type Writer struct {
	root string
	log  zerolog.Logger
}

// NewWriter creates a writer for the given output root.
func NewWriter(root string, log zerolog.Logger) *Writer {
	return &Writer{root: root, log: log}
}

// Root returns the output root the writer commits into.
func (w *Writer) Root() string {
	return w.root
}

// Commit stages the file set and swaps it into the output root.
// Existing files whose relative path appears in keep are carried over
// verbatim instead of being rewritten; that is how ejected units stay
// hand-owned across runs. Everything else under the root is replaced.
func (w *Writer) Commit(set *FileSet, keep []string) (err error) {
	parent := filepath.Dir(filepath.Clean(w.root))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return NewEmissionError("stage", parent, "create staging area", err)
	}
	stage, err := os.MkdirTemp(parent, ".via-stage-")
	if err != nil {
		return NewEmissionError("stage", parent, "create staging directory", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(stage)
		}
	}()

	for _, rel := range set.Paths() {
		data, _ := set.Bytes(rel)
		if err := w.writeStaged(stage, rel, data); err != nil {
			return err
		}
	}
	if err := w.keepExisting(stage, keep); err != nil {
		return err
	}
	if err := w.swap(stage); err != nil {
		return err
	}
	w.log.Debug().Str("root", w.root).Int("files", set.Len()).Msg("generated output committed")
	return nil
}

func (w *Writer) writeStaged(stage, rel string, data []byte) error {
	dst := filepath.Join(stage, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return NewEmissionError("stage", rel, "create output directory", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return NewEmissionError("write", rel, "write output file", err)
	}
	return nil
}

// keepExisting copies protected files from the current root into the
// staged tree, overwriting any freshly generated content at the same
// path. A protected path that does not exist yet is skipped.
func (w *Writer) keepExisting(stage string, keep []string) error {
	for _, rel := range keep {
		clean, err := cleanRel(rel)
		if err != nil {
			return err
		}
		src := filepath.Join(w.root, filepath.FromSlash(clean))
		data, err := os.ReadFile(src)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return NewEmissionError("keep", clean, "read hand-owned file", err)
		}
		if err := w.writeStaged(stage, clean, data); err != nil {
			return err
		}
		w.log.Debug().Str("path", clean).Msg("hand-owned file preserved")
	}
	return nil
}

// swap moves the staged tree into place. The previous root is parked
// next to it during the two renames and restored if the second one
// fails.
func (w *Writer) swap(stage string) error {
	_, statErr := os.Stat(w.root)
	switch {
	case errors.Is(statErr, os.ErrNotExist):
		if err := os.Rename(stage, w.root); err != nil {
			return NewEmissionError("commit", w.root, "move staged output into place", err)
		}
		return nil
	case statErr != nil:
		return NewEmissionError("commit", w.root, "inspect output root", statErr)
	}

	old := w.root + ".via-old"
	if err := os.RemoveAll(old); err != nil {
		return NewEmissionError("commit", old, "clear stale backup", err)
	}
	if err := os.Rename(w.root, old); err != nil {
		return NewEmissionError("commit", w.root, "park previous output", err)
	}
	if err := os.Rename(stage, w.root); err != nil {
		if restoreErr := os.Rename(old, w.root); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
		return NewEmissionError("commit", w.root, "move staged output into place", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return NewEmissionError("commit", old, "remove previous output", err)
	}
	return nil
}

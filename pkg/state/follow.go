package state

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Follow copies everything appended to path after offset into w until ctx is done.
// A truncated file (a service relaunched over the same log) restarts from the beginning.
func Follow(ctx context.Context, path string, offset int64, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so that the log being recreated does not drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "watch log dir")
	}

	offset, err = copyFrom(path, offset, w)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			offset, err = copyFrom(path, offset, w)
			if err != nil {
				return err
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Str("log", path).Msg("log watcher error")
		}
	}
}

func copyFrom(path string, offset int64, w io.Writer) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return offset, errors.Wrap(err, "open log")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return offset, errors.Wrap(err, "stat log")
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, errors.Wrap(err, "seek log")
	}
	n, err := io.Copy(w, f)
	if err != nil {
		return offset + n, errors.Wrap(err, "copy log")
	}
	return offset + n, nil
}

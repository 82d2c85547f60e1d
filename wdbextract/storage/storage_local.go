package storage

import (
	"context"
	"os"
	"path/filepath"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
	"github.com/flaneur2020/wdbextract/wdbextract/logger"
)

// LocalStorage resolves containers as <Dir>/<key><Ext> on the local filesystem.
type LocalStorage struct {
	Dir string
	Ext string
}

// NewLocalStorage creates a storage reading containers from dir.
func NewLocalStorage(dir, ext string) *LocalStorage {
	return &LocalStorage{Dir: dir, Ext: ext}
}

func (s *LocalStorage) Location(key string) string {
	return filepath.Join(s.Dir, key+s.Ext)
}

func (s *LocalStorage) OpenContainer(ctx context.Context, key string) (Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Location(key)
	logger.Debug("Opening container: %s", path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wdberrors.ErrNotFound.WithDetail("path", path).WithCause(err)
		}
		return nil, wdberrors.ErrIO.WithDetail("path", path).WithCause(err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wdberrors.ErrIO.WithDetail("path", path).WithCause(err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, wdberrors.ErrIO.WithMessage("container is a directory").WithDetail("path", path)
	}

	return &fileContainer{File: f, size: stat.Size()}, nil
}

type fileContainer struct {
	*os.File
	size int64
}

func (c *fileContainer) Size() int64 {
	return c.size
}

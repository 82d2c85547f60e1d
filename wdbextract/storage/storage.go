package storage

import (
	"context"
	"io"
)

// Container is an open container file positioned at offset 0.
type Container interface {
	io.ReadSeeker
	io.Closer
	// Size returns the container size in bytes, or -1 when unknown.
	Size() int64
}

// Storage abstracts where container files come from.
type Storage interface {
	// OpenContainer opens the container identified by key (short code plus
	// region suffix). A missing container yields an error whose code is
	// NOT_FOUND.
	OpenContainer(ctx context.Context, key string) (Container, error)
	// Location describes where key is looked up, for log messages.
	Location(key string) string
}

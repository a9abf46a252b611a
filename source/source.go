// Package source reads image files below the server root.
package source

import (
	"context"
	"time"
)

// File is the content of an image file.
type File struct {
	Filepath string
	Data     []byte
	ModTime  time.Time
}

// Source gives access to image files by their filepath relative to the
// server root.
type Source interface {
	Stat(filepath string) (time.Time, error)
	Read(ctx context.Context, filepath string) (*File, error)
}

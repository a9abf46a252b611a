package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cytomine/pims/cache"
	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/problem"
)

// DiskSource reads files from a root directory, through a cache.
type DiskSource struct {
	root  string
	cache cache.Cache
}

// NewDiskSource returns a source rooted at root. Files are cached in a
// group of cacheSize bytes, when positive.
func NewDiskSource(root string, name string, cacheSize int64) (*DiskSource, error) {
	ds := &DiskSource{root: root}

	c, err := cache.NewCacheFromConfig(name, cacheSize, ds.load)
	if err != nil {
		return nil, err
	}
	ds.cache = c
	return ds, nil
}

// Root is the directory files are read from.
func (ds *DiskSource) Root() string {
	return ds.root
}

// Path returns the absolute path of a filepath. Parent directory references
// are dropped so that every path stays below the root.
func (ds *DiskSource) Path(fp string) (string, error) {
	clean, err := url.PathUnescape(fp)
	if err != nil {
		return "", problem.BadRequest("%#v is not a valid filepath", fp)
	}
	clean = strings.Replace(clean, "../", "", -1)
	clean = path.Clean("/" + clean)
	return filepath.Join(ds.root, filepath.FromSlash(clean)), nil
}

// Stat returns the modification time of the file.
func (ds *DiskSource) Stat(fp string) (time.Time, error) {
	path, err := ds.Path(fp)
	if err != nil {
		return time.Time{}, err
	}

	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		logger.Debugf("Cannot open file %#v: %v", path, err)
		return time.Time{}, problem.FilepathNotFound(fp)
	}
	return stat.ModTime(), nil
}

// Read returns the content of the file.
func (ds *DiskSource) Read(ctx context.Context, fp string) (*File, error) {
	modTime, err := ds.Stat(fp)
	if err != nil {
		return nil, err
	}

	// The modification time is part of the key so that updated files are
	// read again.
	key := fmt.Sprintf("%s@%d", fp, modTime.UnixNano())
	data, err := ds.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return &File{
		Filepath: fp,
		Data:     data,
		ModTime:  modTime,
	}, nil
}

func (ds *DiskSource) load(ctx context.Context, key string) ([]byte, error) {
	fp := key
	if i := strings.LastIndex(key, "@"); i >= 0 {
		fp = key[:i]
	}

	path, err := ds.Path(fp)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, problem.FilepathNotFound(fp)
		}
		return nil, err
	}
	return data, nil
}

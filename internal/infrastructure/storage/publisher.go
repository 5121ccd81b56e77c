package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Content types of the published files
const (
	ContentTypeJSON    = "application/json"
	ContentTypeParquet = "application/vnd.apache.parquet"
)

var publishedTypes = map[string]string{
	".json":    ContentTypeJSON,
	".parquet": ContentTypeParquet,
}

// ContentTypeFor returns the content type of a publishable file, or false
// for files that are not published
func ContentTypeFor(name string) (string, bool) {
	ct, ok := publishedTypes[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// PublishedObject describes one uploaded file
type PublishedObject struct {
	Key         string
	ContentType string
	Size        int64
}

// Publisher uploads the generated site data directory
type Publisher struct {
	store  ObjectStorage
	prefix string
	logger *zap.Logger
}

// NewPublisher creates a Publisher writing keys under prefix
func NewPublisher(store ObjectStorage, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Publish uploads every JSON and Parquet file below dir. Keys are the paths
// relative to dir, slash separated, joined to the prefix.
func (p *Publisher) Publish(ctx context.Context, dir string) ([]PublishedObject, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("publish directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("publish directory: %s is not a directory", dir)
	}

	if err := p.store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	var published []PublishedObject
	err = filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		contentType, ok := ContentTypeFor(d.Name())
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		key := path.Join(p.prefix, filepath.ToSlash(rel))

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if err := p.store.Upload(ctx, key, data, contentType); err != nil {
			return err
		}

		p.logger.Debug("Uploaded object",
			zap.String("key", key),
			zap.String("content_type", contentType),
			zap.Int("bytes", len(data)),
		)
		published = append(published, PublishedObject{Key: key, ContentType: contentType, Size: int64(len(data))})
		return nil
	})
	if err != nil {
		return published, err
	}

	p.logger.Info("Published site data",
		zap.String("dir", dir),
		zap.String("prefix", p.prefix),
		zap.Int("objects", len(published)),
	)
	return published, nil
}

// Package uuidgen writes batches of random UUIDs to an object bucket, one
// object per run keyed by the run's timestamp.
package uuidgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BatchSize is the number of ids written per run.
const BatchSize = 10

// KeyLayout formats object keys: ISO-8601 UTC with milliseconds.
const KeyLayout = "2006-01-02T15:04:05.000Z07:00"

// Bucket stores objects by key.
type Bucket interface {
	PutObject(ctx context.Context, key string, body []byte) error
}

// Batch is the JSON document written for each run.
type Batch struct {
	IDs []string `json:"ids"`
}

// Generator produces one batch per Run.
type Generator struct {
	Bucket Bucket
	Log    logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// NewGenerator returns a Generator writing to b.
func NewGenerator(b Bucket, log logrus.FieldLogger) *Generator {
	return &Generator{Bucket: b, Log: log, now: time.Now, newID: uuid.NewString}
}

// Run writes one batch and returns its key.
func (g *Generator) Run(ctx context.Context) (string, error) {
	key := g.now().UTC().Format(KeyLayout)
	batch := Batch{IDs: make([]string, BatchSize)}
	for i := range batch.IDs {
		batch.IDs[i] = g.newID()
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}
	if err := g.Bucket.PutObject(ctx, key, body); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	g.Log.WithField("key", key).Info("uuid batch written")
	return key, nil
}

// Every runs g on each tick of interval until ctx is done.  Failed runs are
// logged and do not stop the loop.
func (g *Generator) Every(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := g.Run(ctx); err != nil {
				g.Log.WithError(err).Error("uuid batch failed")
			}
		}
	}
}

// ErrInvalidKey is returned for keys that would escape the bucket directory.
var ErrInvalidKey = errors.New("invalid object key")

// DirBucket is a Bucket on the local filesystem: each object is a file
// named by its key inside Dir.
type DirBucket struct {
	Dir string
}

// PutObject writes body atomically by renaming a temporary file into place.
func (b DirBucket) PutObject(_ context.Context, key string, body []byte) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.Dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(b.Dir, key))
}

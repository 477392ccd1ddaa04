// Package resultstore persists analysis records and raw samples to a gocloud
// blob bucket (file://, gs://, s3:// or an in-memory bucket).
package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// now is replaced in tests.
var now = time.Now

type ResultStore struct {
	bucketURL     string
	bucket        *blob.Bucket
	basePath      string
	constructPath bool
}

type (
	Option interface{ set(*ResultStore) }
	option func(*ResultStore)
)

func (o option) set(rs *ResultStore) { o(rs) }

// ConstructPath stores objects under a directory named after the run's
// source, below the base path.
func ConstructPath() Option {
	return option(func(rs *ResultStore) { rs.constructPath = true })
}

// BasePath sets the prefix of every object written.
func BasePath(base string) Option {
	return option(func(rs *ResultStore) { rs.basePath = base })
}

// Bucket makes the store write to an already open bucket instead of opening
// its URL for each call. The caller keeps ownership of b.
func Bucket(b *blob.Bucket) Option {
	return option(func(rs *ResultStore) { rs.bucket = b })
}

// New returns a ResultStore writing to the bucket at bucketURL.
func New(bucketURL string, options ...Option) *ResultStore {
	rs := &ResultStore{bucketURL: bucketURL}
	for _, o := range options {
		o.set(rs)
	}
	return rs
}

func (rs *ResultStore) String() string {
	if rs == nil {
		return ""
	}
	s := rs.bucketURL + "/" + rs.basePath
	if rs.constructPath {
		s += "+"
	}
	return s
}

// openBucket returns the bucket and a function releasing it.
func (rs *ResultStore) openBucket(ctx context.Context) (*blob.Bucket, func(), error) {
	if rs.bucket != nil {
		return rs.bucket, func() {}, nil
	}
	bkt, err := blob.OpenBucket(ctx, rs.bucketURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open bucket %s: %w", rs.bucketURL, err)
	}
	return bkt, func() { bkt.Close() }, nil
}

func (rs *ResultStore) dir(key qualityrun.Key) string {
	if rs.constructPath {
		return path.Join(rs.basePath, qualityrun.SafeName(key.Source))
	}
	return rs.basePath
}

// MakeFilename returns the name of the record file for key: "<run>.json", or
// "<label>-<run>.json" when label is set.
func MakeFilename(key qualityrun.Key, label string) string {
	if label != "" {
		return label + "-" + key.RunID + ".json"
	}
	return key.RunID + ".json"
}

// SamplePath returns the object path used by SaveSample for key.
func (rs *ResultStore) SamplePath(key qualityrun.Key) string {
	return path.Join(rs.dir(key), key.RunID+".bin")
}

// RecordPath returns the object path used by Save for key.
func (rs *ResultStore) RecordPath(key qualityrun.Key) string {
	return path.Join(rs.dir(key), MakeFilename(key, ""))
}

func (rs *ResultStore) write(ctx context.Context, uploadPath, contentType string, data []byte) error {
	bkt, release, err := rs.openBucket(ctx)
	if err != nil {
		return err
	}
	defer release()

	slog.InfoContext(ctx, "Uploading to results bucket",
		"bucket", rs.bucketURL,
		"path", uploadPath,
		"bytes", len(data))

	w, err := bkt.NewWriter(ctx, uploadPath, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Save writes the record of a run as JSON.
func (rs *ResultStore) Save(ctx context.Context, key qualityrun.Key, analysis sampling.Analysis) error {
	record := qualityrun.Record{
		Run:              key,
		CreatedTimestamp: now().UTC().Unix(),
		Analysis:         analysis,
	}
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := rs.write(ctx, rs.RecordPath(key), "application/json", b); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// SaveSample writes the raw bytes that were analysed in a run.
func (rs *ResultStore) SaveSample(ctx context.Context, key qualityrun.Key, sample sampling.ByteSample) error {
	if err := rs.write(ctx, rs.SamplePath(key), "application/octet-stream", sample.Bytes()); err != nil {
		return fmt.Errorf("failed to save sample %s: %w", key, err)
	}
	return nil
}

// Load reads back the record saved for key.
func (rs *ResultStore) Load(ctx context.Context, key qualityrun.Key) (qualityrun.Record, error) {
	bkt, release, err := rs.openBucket(ctx)
	if err != nil {
		return qualityrun.Record{}, err
	}
	defer release()

	r, err := bkt.NewReader(ctx, rs.RecordPath(key), nil)
	if err != nil {
		return qualityrun.Record{}, err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return qualityrun.Record{}, err
	}
	var record qualityrun.Record
	if err := json.Unmarshal(b, &record); err != nil {
		return qualityrun.Record{}, fmt.Errorf("failed to decode record %s: %w", key, err)
	}
	return record, nil
}

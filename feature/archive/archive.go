package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"horror-tracker/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrDisabled is returned by Load when archival is off.
	ErrDisabled = errors.New("archive disabled")
	// ErrInvalidName is returned for run ids or names that are not a single path segment.
	ErrInvalidName = errors.New("invalid snapshot name")
)

// Archiver writes run snapshots as JSON objects at <prefix>/<runID>/<name>.json.
type Archiver struct {
	client storage.Client
	bucket string
	region string
	cfg    Config
	log    *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// New creates an Archiver. A nil client or a disabled config makes every
// write a no-op.
func New(client storage.Client, bucket, region string, cfg Config, log *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		region: region,
		cfg:    cfg,
		log:    log,
	}
}

// Enabled reports whether snapshots are written.
func (a *Archiver) Enabled() bool {
	return a.cfg.Enabled && a.client != nil
}

func (a *Archiver) key(runID, name string) string {
	return path.Join(a.cfg.Prefix, runID, name+".json")
}

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ensured {
		return nil
	}
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return err
	}
	a.ensured = true
	return nil
}

// Save writes v as the named snapshot of a run.
func (a *Archiver) Save(ctx context.Context, runID, name string, v any) error {
	if !a.Enabled() {
		return nil
	}
	if !validName(runID) || !validName(name) {
		return fmt.Errorf("%w: %s/%s", ErrInvalidName, runID, name)
	}
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", name, err)
	}

	key := a.key(runID, name)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	a.log.Debug("Snapshot archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Load reads the raw JSON of a snapshot.
func (a *Archiver) Load(ctx context.Context, runID, name string) ([]byte, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	if !validName(runID) || !validName(name) {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidName, runID, name)
	}

	key := a.key(runID, name)
	data, err := a.client.ReadObject(ctx, a.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// runObjects groups every archived object by run, oldest run first.
type runObjects struct {
	id      string
	created time.Time
	keys    []string
}

func (a *Archiver) runs(ctx context.Context) ([]runObjects, error) {
	byRun := make(map[string]*runObjects)
	prefix := a.cfg.Prefix + "/"
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		id, _, ok := strings.Cut(strings.TrimPrefix(obj.Key, prefix), "/")
		if !ok {
			continue
		}
		r, ok := byRun[id]
		if !ok {
			r = &runObjects{id: id, created: obj.LastModified}
			byRun[id] = r
		}
		if obj.LastModified.Before(r.created) {
			r.created = obj.LastModified
		}
		r.keys = append(r.keys, obj.Key)
	}

	out := make([]runObjects, 0, len(byRun))
	for _, r := range byRun {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].created.Equal(out[j].created) {
			return out[i].id < out[j].id
		}
		return out[i].created.Before(out[j].created)
	})
	return out, nil
}

// Runs returns the archived run ids, oldest first.
func (a *Archiver) Runs(ctx context.Context) ([]string, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	runs, err := a.runs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.id)
	}
	return ids, nil
}

// Prune removes the oldest runs beyond KeepRuns.
func (a *Archiver) Prune(ctx context.Context) error {
	if !a.Enabled() || a.cfg.KeepRuns <= 0 {
		return nil
	}
	runs, err := a.runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) <= a.cfg.KeepRuns {
		return nil
	}
	stale := runs[:len(runs)-a.cfg.KeepRuns]

	var keys []string
	for _, r := range stale {
		keys = append(keys, r.keys...)
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var errs []string
	for err := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", err.ObjectName, err.Err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("prune had %d errors: %v", len(errs), errs)
	}

	a.log.Info("Pruned archived runs", zap.Int("runs", len(stale)), zap.Int("objects", len(keys)))
	return nil
}

package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that an object does not exist in the store. Lookup
// failures of any other kind are returned as-is so callers can tell a miss
// from a misconfiguration.
var ErrNotFound = errors.New("object not found")

// ObjectMeta holds the metadata returned by an existence probe.
type ObjectMeta struct {
	ContentType   string
	ContentLength int64
}

// ObjectInfo describes one object in a listing.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStore is the pipeline's shared storage. Keys are case-sensitive
// UTF-8 strings. List results lag immediately-prior writes on eventually
// consistent backends; callers must tolerate that.
type ObjectStore interface {
	Head(ctx context.Context, key string) (*ObjectMeta, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Package blobstore is the persistent key-value store the tracker keeps its
// statistics, category overrides and break settings in. Values are opaque
// JSON blobs; keys missing from the store are simply absent from Get results.
package blobstore

import (
	"context"
	"errors"
)

const (
	KeyWebsiteStats      = "websiteStats"
	KeyWebsiteCategories = "websiteCategories"
	KeyBreakSettings     = "breakSettings"
)

var ErrClosed = errors.New("blobstore: store closed")

type Store interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, items map[string][]byte) error
	Close() error
}

func copyItems(items map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(items))
	for k, v := range items {
		buf := make([]byte, len(v))
		copy(buf, v)
		out[k] = buf
	}
	return out
}

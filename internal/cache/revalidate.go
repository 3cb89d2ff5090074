package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/metrics"
)

// KV is the subset of Store that Revalidate needs.
type KV interface {
	Put(ctx context.Context, key string, v any) error
	Get(ctx context.Context, key string, dst any) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Revalidate implements stale-while-revalidate for a single read. It always
// calls fetch. A fresh result overwrites the cached entry and is returned. If
// fetch fails, the last cached value is returned instead when one exists.
//
// domain.ErrNotFound is authoritative: the entry is dropped and the error is
// returned, so a deleted resource is never resurrected from cache.
func Revalidate[T any](ctx context.Context, kv KV, key string, fetch func(context.Context) (T, error)) (T, error) {
	fresh, err := fetch(ctx)
	if err == nil {
		if perr := kv.Put(ctx, key, fresh); perr != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", perr)
		}
		metrics.CacheLookups.WithLabelValues("fresh").Inc()
		return fresh, nil
	}

	if errors.Is(err, domain.ErrNotFound) {
		if derr := kv.Delete(ctx, key); derr != nil {
			slog.WarnContext(ctx, "cache delete failed", "key", key, "error", derr)
		}
		var zero T
		return zero, err
	}

	var stale T
	ok, gerr := kv.Get(ctx, key, &stale)
	if gerr != nil || !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		var zero T
		return zero, err
	}

	slog.WarnContext(ctx, "serving stale cache entry", "key", key, "error", err)
	metrics.CacheLookups.WithLabelValues("stale").Inc()
	return stale, nil
}

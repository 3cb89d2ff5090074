package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pkordes/map-collection/internal/imaging"
	"github.com/pkordes/map-collection/internal/metrics"
)

// storePhoto re-encodes r to a bounded JPEG, saves it under key, and returns
// the public URL. target labels the upload in metrics.
func storePhoto(ctx context.Context, blobs BlobStore, key, target string, r io.Reader) (string, error) {
	jpg, err := imaging.Reencode(r)
	if err != nil {
		return "", err
	}
	if _, err := blobs.Save(ctx, key, bytes.NewReader(jpg)); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	metrics.RecordPhoto(target, len(jpg))
	return blobs.URL(key), nil
}

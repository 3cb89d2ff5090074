package service

import (
	"context"
	"io"
	"time"
)

// PasswordHasher hashes and checks passwords. Implemented by auth.BcryptHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenIssuer issues bearer tokens. Implemented by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(email string) (string, time.Time, error)
}

// BlobStore stores photos. Implemented by *storage.Store.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	URL(key string) string
}

// Asker runs a prompt through the generative-text model.
// Implemented by *assistant.Client.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

package service

import (
	"errors"

	"github.com/pkordes/map-collection/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

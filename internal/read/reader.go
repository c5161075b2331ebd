// Package read is the query layer over the record store: latest-forecast
// selection, generation reads, grouped aggregation, and the site/user/status
// lookups. It performs no writes beyond the documented get-or-create
// fallbacks and runs entirely inside the caller's session.
package read

import (
	"errors"

	"github.com/openpv/sitedata/internal/store"
)

var (
	// ErrNotFound marks a lookup for a required entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSumBy marks an unrecognized sum_by value. It is raised
	// before any store access.
	ErrInvalidSumBy = errors.New("invalid sum_by value")
)

type Reader struct {
	store *store.Store
}

func New(s *store.Store) *Reader {
	return &Reader{store: s}
}

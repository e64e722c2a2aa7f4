package query

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxLimit is the most records a single page may hold
	MaxLimit = 1000
)

var (
	ErrQueryNotSupported = errors.New("the requested query option is not supported")
)

// Ordering is the order of a returned set of records, by id
type Ordering uint

const (
	Ascending Ordering = iota
	Descending
)

// ToOrdering parses "asc" or "desc".
func ToOrdering(val string) (Ordering, error) {
	switch val {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return 0, errors.Errorf("unexpected ordering: %v", val)
	}
}

// Cursor is the big endian id of the last record of the previous page.
type Cursor []byte

var EmptyCursor = Cursor{}

func ToCursor(id uint64) Cursor {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func (c Cursor) ToUint64() uint64 {
	return binary.BigEndian.Uint64(c)
}

func (c Cursor) ToBase58() string {
	return base58.Encode(c)
}

// QueryOptions are the paging parameters of a query
type QueryOptions struct {
	SortBy Ordering
	Limit  uint64
	Cursor Cursor
}

type Option func(*QueryOptions) error

func WithDirection(val Ordering) Option {
	return func(qo *QueryOptions) error {
		if val != Ascending && val != Descending {
			return ErrQueryNotSupported
		}
		qo.SortBy = val
		return nil
	}
}

func WithLimit(val uint64) Option {
	return func(qo *QueryOptions) error {
		qo.Limit = val
		return nil
	}
}

// WithCursor pages from the record after cursor, in the query's direction.
func WithCursor(val []byte) Option {
	return func(qo *QueryOptions) error {
		if len(val) != 0 && len(val) != 8 {
			return errors.Errorf("invalid cursor length: %d", len(val))
		}
		qo.Cursor = val
		return nil
	}
}

// DefaultPaginationHandler applies opts over an ascending, MaxLimit sized
// first page. Limits above MaxLimit are rejected.
func DefaultPaginationHandler(opts ...Option) (*QueryOptions, error) {
	req := QueryOptions{
		Limit:  MaxLimit,
		SortBy: Ascending,
	}
	for _, o := range opts {
		if err := o(&req); err != nil {
			return nil, err
		}
	}

	if req.Limit > MaxLimit {
		return nil, ErrQueryNotSupported
	}
	return &req, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

type store struct {
	mu          sync.Mutex
	records     []*transaction.Record
	bySignature map[string]*transaction.Record
	last        uint64
}

// New returns a new in memory transaction.Store
func New() transaction.Store {
	return &store{
		bySignature: make(map[string]*transaction.Record),
	}
}

// Put implements transaction.Store.Put
func (s *store) Put(_ context.Context, record *transaction.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySignature[record.Signature]; ok {
		return transaction.ErrTransactionExists
	}

	s.last++
	record.Id = s.last
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	cloned := record.Clone()
	s.records = append(s.records, &cloned)
	s.bySignature[cloned.Signature] = &cloned

	return nil
}

// Get implements transaction.Store.Get
func (s *store) Get(_ context.Context, signature string) (*transaction.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.bySignature[signature]
	if !ok {
		return nil, transaction.ErrTransactionNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByPayer implements transaction.Store.GetAllByPayer
func (s *store) GetAllByPayer(_ context.Context, payer string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*transaction.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*transaction.Record
	for _, item := range s.records {
		if item.Payer != payer {
			continue
		}

		if len(cursor) > 0 {
			if direction == query.Ascending && item.Id <= cursor.ToUint64() {
				continue
			}
			if direction == query.Descending && item.Id >= cursor.ToUint64() {
				continue
			}
		}

		cloned := item.Clone()
		res = append(res, &cloned)
	}

	sort.Slice(res, func(i, j int) bool {
		if direction == query.Descending {
			return res[i].Id > res[j].Id
		}
		return res[i].Id < res[j].Id
	})

	if limit > 0 && uint64(len(res)) > limit {
		res = res[:limit]
	}

	if len(res) == 0 {
		return nil, transaction.ErrTransactionNotFound
	}
	return res, nil
}

// GetLatestSlot implements transaction.Store.GetLatestSlot
func (s *store) GetLatestSlot(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest uint64
	for _, item := range s.records {
		if item.Slot > latest {
			latest = item.Slot
		}
	}
	return latest, nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.bySignature = make(map[string]*transaction.Record)
	s.last = 0
}

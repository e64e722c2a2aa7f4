package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
)

type store struct {
	mu        sync.Mutex
	records   []*account.Record
	byAddress map[string]*account.Record
	last      uint64
}

// New returns a new in memory account.Store
func New() account.Store {
	return &store{
		byAddress: make(map[string]*account.Record),
	}
}

// Save implements account.Store.Save
func (s *store) Save(_ context.Context, records ...*account.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, ok := seen[record.Address]; ok {
			return account.ErrStaleAccountState
		}
		seen[record.Address] = struct{}{}

		if item, ok := s.byAddress[record.Address]; ok && record.Slot <= item.Slot {
			return account.ErrStaleAccountState
		}
	}

	now := time.Now()
	for _, record := range records {
		record.LastUpdatedAt = now

		if item, ok := s.byAddress[record.Address]; ok {
			record.Id = item.Id
			record.CopyTo(item)
			continue
		}

		s.last++
		record.Id = s.last

		cloned := record.Clone()
		s.records = append(s.records, &cloned)
		s.byAddress[cloned.Address] = &cloned
	}

	return nil
}

// Get implements account.Store.Get
func (s *store) Get(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byAddress[address]
	if !ok {
		return nil, account.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*account.Record
	for _, item := range s.records {
		if item.Owner != owner {
			continue
		}

		cloned := item.Clone()
		res = append(res, &cloned)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Id < res[j].Id
	})
	return res, nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.byAddress = make(map[string]*account.Record)
	s.last = 0
}

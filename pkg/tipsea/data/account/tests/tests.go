package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testStaleSlot,
		testBatchIsAtomic,
		testGetAllByOwner,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "address")
		assert.Equal(t, account.ErrAccountNotFound, err)

		start := time.Now()

		expected := &account.Record{
			Address:  "address",
			Owner:    "owner",
			Lamports: 1_000_000,
			Data:     []byte{1, 2, 3},
			Slot:     1,
		}
		cloned := expected.Clone()

		require.NoError(t, s.Save(ctx, expected))
		assert.EqualValues(t, 1, expected.Id)
		assert.True(t, expected.LastUpdatedAt.After(start))

		actual, err := s.Get(ctx, "address")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)

		expected.Lamports = 0
		expected.Data = nil
		expected.Owner = "new_owner"
		expected.Executable = true
		expected.Slot = 2
		cloned = expected.Clone()

		require.NoError(t, s.Save(ctx, expected))
		assert.EqualValues(t, 1, expected.Id)

		actual, err = s.Get(ctx, "address")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)
		assert.Empty(t, actual.Data)
	})
}

func testStaleSlot(t *testing.T, s account.Store) {
	t.Run("testStaleSlot", func(t *testing.T) {
		ctx := context.Background()

		expected := &account.Record{
			Address:  "address",
			Owner:    "owner",
			Lamports: 10,
			Slot:     10,
		}
		require.NoError(t, s.Save(ctx, expected))
		cloned := expected.Clone()

		update := expected.Clone()
		update.Lamports = 20
		assert.Equal(t, account.ErrStaleAccountState, s.Save(ctx, &update))

		update.Slot = 9
		assert.Equal(t, account.ErrStaleAccountState, s.Save(ctx, &update))

		actual, err := s.Get(ctx, "address")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)

		update.Slot = 11
		require.NoError(t, s.Save(ctx, &update))

		actual, err = s.Get(ctx, "address")
		require.NoError(t, err)
		assert.EqualValues(t, 20, actual.Lamports)
		assert.EqualValues(t, 11, actual.Slot)
	})
}

func testBatchIsAtomic(t *testing.T, s account.Store) {
	t.Run("testBatchIsAtomic", func(t *testing.T) {
		ctx := context.Background()

		existing := &account.Record{
			Address:  "existing",
			Owner:    "owner",
			Lamports: 10,
			Slot:     5,
		}
		require.NoError(t, s.Save(ctx, existing))

		fresh := &account.Record{
			Address:  "fresh",
			Owner:    "owner",
			Lamports: 1,
			Slot:     5,
		}
		stale := existing.Clone()
		stale.Lamports = 0

		assert.Equal(t, account.ErrStaleAccountState, s.Save(ctx, fresh, &stale))

		_, err := s.Get(ctx, "fresh")
		assert.Equal(t, account.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, "existing")
		require.NoError(t, err)
		assert.EqualValues(t, 10, actual.Lamports)

		stale.Slot = 6
		fresh.Slot = 6
		require.NoError(t, s.Save(ctx, fresh, &stale))

		actual, err = s.Get(ctx, "existing")
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.Lamports)

		actual, err = s.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.EqualValues(t, 1, actual.Lamports)
	})
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByOwner(ctx, "program")
		assert.Equal(t, account.ErrAccountNotFound, err)

		var records []*account.Record
		for i, address := range []string{"a", "b", "c"} {
			owner := "program"
			if i == 1 {
				owner = "other"
			}

			records = append(records, &account.Record{
				Address:  address,
				Owner:    owner,
				Lamports: uint64(i + 1),
				Slot:     1,
			})
		}
		require.NoError(t, s.Save(ctx, records...))

		actual, err := s.GetAllByOwner(ctx, "program")
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, actual[0], records[0])
		assertEquivalentRecords(t, actual[1], records[2])

		actual, err = s.GetAllByOwner(ctx, "other")
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assertEquivalentRecords(t, actual[0], records[1])
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, len(obj1.Data), len(obj2.Data))
	if len(obj1.Data) > 0 {
		assert.Equal(t, obj1.Data, obj2.Data)
	}
	assert.Equal(t, obj1.Executable, obj2.Executable)
	assert.Equal(t, obj1.Slot, obj2.Slot)
}

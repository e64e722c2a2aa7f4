package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/pointer"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

func RunTests(t *testing.T, s transaction.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s transaction.Store){
		testRoundTrip,
		testGetAllByPayer,
		testGetLatestSlot,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s transaction.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "signature")
		assert.Equal(t, transaction.ErrTransactionNotFound, err)

		start := time.Now()

		expected := &transaction.Record{
			Signature: "signature",
			Slot:      12,
			Payer:     "payer",
			Data:      []byte{1, 2, 3},
			HasErrors: true,
			Error:     pointer.String(`{"InstructionError":[0,{"Custom":6003}]}`),
		}
		cloned := expected.Clone()

		require.NoError(t, s.Put(ctx, expected))
		assert.EqualValues(t, 1, expected.Id)
		assert.True(t, expected.CreatedAt.After(start))

		actual, err := s.Get(ctx, "signature")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, &cloned)

		assert.Equal(t, transaction.ErrTransactionExists, s.Put(ctx, &cloned))

		invalid := cloned.Clone()
		invalid.Signature = "other"
		invalid.Error = nil
		assert.Error(t, s.Put(ctx, &invalid))
	})
}

func testGetAllByPayer(t *testing.T, s transaction.Store) {
	t.Run("testGetAllByPayer", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByPayer(ctx, "payer", query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, transaction.ErrTransactionNotFound, err)

		var expected []*transaction.Record
		for i := 0; i < 5; i++ {
			record := &transaction.Record{
				Signature: fmt.Sprintf("signature%d", i),
				Slot:      uint64(i + 1),
				Payer:     "payer",
				Data:      []byte{byte(i)},
			}
			require.NoError(t, s.Put(ctx, record))
			expected = append(expected, record)

			require.NoError(t, s.Put(ctx, &transaction.Record{
				Signature: fmt.Sprintf("unrelated%d", i),
				Slot:      uint64(i + 1),
				Payer:     "other",
				Data:      []byte{0xff},
			}))
		}

		actual, err := s.GetAllByPayer(ctx, "payer", query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i := range actual {
			assertEquivalentRecords(t, actual[i], expected[i])
		}

		actual, err = s.GetAllByPayer(ctx, "payer", query.EmptyCursor, 2, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, actual[0], expected[4])
		assertEquivalentRecords(t, actual[1], expected[3])

		actual, err = s.GetAllByPayer(ctx, "payer", query.ToCursor(actual[1].Id), 2, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, actual[0], expected[2])
		assertEquivalentRecords(t, actual[1], expected[1])

		actual, err = s.GetAllByPayer(ctx, "payer", query.ToCursor(expected[3].Id), 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assertEquivalentRecords(t, actual[0], expected[4])

		_, err = s.GetAllByPayer(ctx, "payer", query.ToCursor(expected[4].Id), 10, query.Ascending)
		assert.Equal(t, transaction.ErrTransactionNotFound, err)
	})
}

func testGetLatestSlot(t *testing.T, s transaction.Store) {
	t.Run("testGetLatestSlot", func(t *testing.T) {
		ctx := context.Background()

		latest, err := s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, latest)

		for i, slot := range []uint64{5, 9, 7} {
			require.NoError(t, s.Put(ctx, &transaction.Record{
				Signature: fmt.Sprintf("signature%d", i),
				Slot:      slot,
				Payer:     "payer",
				Data:      []byte{byte(i)},
			}))
		}

		latest, err = s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 9, latest)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *transaction.Record) {
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, obj1.Payer, obj2.Payer)
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.HasErrors, obj2.HasErrors)
	assert.Equal(t, obj1.Error, obj2.Error)
}

package memory

import (
	"testing"

	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction/tests"
)

func TestTransactionMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}

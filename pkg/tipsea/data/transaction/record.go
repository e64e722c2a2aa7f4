package transaction

import (
	"errors"
	"time"

	"github.com/tipsea/tipsea-solana/pkg/pointer"
)

// Record is the outcome of a transaction the ledger executed. Transactions
// rejected before execution, such as those with bad signatures, are never
// recorded.
type Record struct {
	Id uint64

	Signature string
	Slot      uint64
	Payer     string
	Data      []byte

	HasErrors bool
	Error     *string

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Signature) == 0 {
		return errors.New("signature is required")
	}

	if len(r.Payer) == 0 {
		return errors.New("payer is required")
	}

	if len(r.Data) == 0 {
		return errors.New("transaction data is required")
	}

	if r.HasErrors != (r.Error != nil) {
		return errors.New("error must be set if and only if the transaction has errors")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Signature: r.Signature,
		Slot:      r.Slot,
		Payer:     r.Payer,
		Data:      append([]byte(nil), r.Data...),

		HasErrors: r.HasErrors,
		Error:     pointer.StringCopy(r.Error),

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()
	*dst = cloned
}

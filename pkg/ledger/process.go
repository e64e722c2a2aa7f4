package ledger

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

// ProcessTransaction executes a signed transaction. A *solana.TransactionError
// is returned when the transaction was rejected or one of its instructions
// failed, in which case no account state was changed. Any other error is a
// failure of the bank itself.
func (b *Bank) ProcessTransaction(ctx context.Context, txn solana.Transaction) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ProcessTransaction")
	defer tracer.End()

	start := time.Now()

	log := b.log.WithField("method", "ProcessTransaction")
	if len(txn.Signatures) > 0 {
		log = log.WithField("signature", base58.Encode(txn.Signature()))
	}

	err := b.processTransaction(ctx, log, txn)
	tracer.OnError(err)
	b.recordProcessed(ctx, start, err)

	switch typed := err.(type) {
	case nil:
		log.Debug("transaction processed")
	case *solana.TransactionError:
		log.WithField("result", typed.Error()).Debug("transaction failed")
	default:
		log.WithError(err).Warn("failure processing transaction")
	}

	return err
}

func (b *Bank) processTransaction(ctx context.Context, log *logrus.Entry, txn solana.Transaction) error {
	if err := sanitize(txn); err != nil {
		return err
	}

	if err := txn.VerifySignatures(); err != nil {
		log.WithError(err).Debug("signature verification failed")
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	if !b.isRecentBlockhash(txn.Message.RecentBlockhash) {
		return solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	m := txn.Message
	for _, instruction := range m.Instructions {
		if _, ok := b.getProgram(m.Accounts[instruction.ProgramIndex]); !ok {
			return solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}
	}

	var writable, readonly [][]byte
	for i, address := range m.Accounts {
		if !m.IsWritable(i) {
			readonly = append(readonly, address)
			continue
		}

		if b.isServedAccount(address) {
			return solana.NewTransactionError(solana.TransactionErrorInvalidWritableAccount)
		}
		writable = append(writable, address)
	}

	unlock, ok := b.accountLocks.TryLockAll(writable, readonly)
	if !ok {
		return solana.NewTransactionError(solana.TransactionErrorAccountInUse)
	}
	defer unlock()

	signature := base58.Encode(txn.Signature())
	_, err := b.transactions.Get(ctx, signature)
	if err == nil {
		return solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	} else if err != transaction.ErrTransactionNotFound {
		return errors.Wrap(err, "error checking for duplicate signature")
	}

	loaded := make([]*Account, len(m.Accounts))
	working := make([]*Account, len(m.Accounts))
	for i, address := range m.Accounts {
		loaded[i], err = b.loadAccount(ctx, address)
		if err != nil {
			return err
		}

		cloned := loaded[i].Clone()
		working[i] = &cloned
	}

	slot, _ := b.advanceSlot()
	log = log.WithField("slot", slot)

	txnErr := b.execute(ctx, log, slot, m, working)

	var dirty []*account.Record
	if txnErr == nil {
		for i := range working {
			if !m.IsWritable(i) || working[i].equals(loaded[i]) {
				continue
			}

			working[i].purge()
			dirty = append(dirty, working[i].toRecord(slot))
		}
	}

	record := &transaction.Record{
		Signature: signature,
		Slot:      slot,
		Payer:     base58.Encode(m.Accounts[0]),
		Data:      txn.Marshal(),
		HasErrors: txnErr != nil,
	}
	if txnErr != nil {
		encoded, err := txnErr.JSONString()
		if err != nil {
			return errors.Wrap(err, "error encoding transaction error")
		}
		record.Error = &encoded
	}

	// Account state and the transaction record land together, so a
	// signature is never recorded without its effects or vice versa.
	err = b.data.ExecuteInTx(ctx, func(ctx context.Context) error {
		if len(dirty) > 0 {
			if err := b.accounts.Save(ctx, dirty...); err != nil {
				return errors.Wrap(err, "error committing account state")
			}
		}

		if err := b.transactions.Put(ctx, record); err != nil {
			return errors.Wrap(err, "error saving transaction")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if txnErr != nil {
		return txnErr
	}
	return nil
}

// execute runs every instruction against the working set of accounts, which
// are only committed by the caller when no instruction fails.
func (b *Bank) execute(ctx context.Context, log *logrus.Entry, slot uint64, m solana.Message, working []*Account) *solana.TransactionError {
	for i, compiled := range m.Instructions {
		programId := m.Accounts[compiled.ProgramIndex]
		program, _ := b.getProgram(programId)

		accounts := make([]*AccountInfo, len(compiled.Accounts))
		for j, index := range compiled.Accounts {
			accounts[j] = &AccountInfo{
				Account:    working[index],
				IsSigner:   m.IsSigner(int(index)),
				IsWritable: m.IsWritable(int(index)),
			}
		}

		invokeCtx := newInvokeContext(ctx, log.WithField("instruction", i), b, slot, programId, compiled.Data, accounts, nil)

		err := program.Process(invokeCtx)
		if err == nil {
			err = invokeCtx.verify()
		}
		if err == nil {
			continue
		}

		instructionErr := toInstructionError(i, err)
		instructionFailuresCounter.WithLabelValues(base58.Encode(programId), instructionErr.ErrorKey().Error()).Inc()

		log.WithError(err).WithFields(logrus.Fields{
			"instruction": i,
			"program":     base58.Encode(programId),
		}).Debug("instruction failed")

		txnErr, err := solana.TransactionErrorFromInstructionError(instructionErr)
		if err != nil {
			return solana.NewTransactionError(solana.TransactionErrorInternal)
		}
		return txnErr
	}

	return nil
}

// sanitize rejects transactions whose structure is inconsistent before any
// work is done on their behalf.
func sanitize(txn solana.Transaction) error {
	m := txn.Message

	if m.Header.NumSignatures == 0 || len(txn.Signatures) != int(m.Header.NumSignatures) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if m.Header.NumReadonlySigned >= m.Header.NumSignatures {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if int(m.Header.NumSignatures)+int(m.Header.NumReadOnly) > len(m.Accounts) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	seen := make(map[string]struct{}, len(m.Accounts))
	for _, address := range m.Accounts {
		if len(address) != ed25519.PublicKeySize {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		if _, ok := seen[string(address)]; ok {
			return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
		}
		seen[string(address)] = struct{}{}
	}

	for _, instruction := range m.Instructions {
		// The payer can never be invoked as a program.
		if instruction.ProgramIndex == 0 || int(instruction.ProgramIndex) >= len(m.Accounts) {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		for _, index := range instruction.Accounts {
			if int(index) >= len(m.Accounts) {
				return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
			}
		}
	}

	return nil
}

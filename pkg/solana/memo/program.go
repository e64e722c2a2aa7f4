package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

// ProgramKey is the address of the memo program that should be used.
//
// Current key: Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo
var ProgramKey = ed25519.PublicKey{5, 74, 83, 80, 248, 93, 200, 130, 214, 20, 165, 86, 114, 120, 138, 41, 109, 223, 30, 171, 171, 208, 166, 6, 120, 136, 73, 50, 244, 238, 246, 160}

var ErrInvalidMemo = errors.New("memo is not valid utf-8")

// Instruction returns a memo instruction. Any provided signers must sign the
// transaction for the memo to be accepted.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/entrypoint.rs
func Instruction(data string, signers ...ed25519.PublicKey) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(signers))
	for i, signer := range signers {
		accounts[i] = solana.NewReadonlyAccountMeta(signer, true)
	}

	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
		accounts...,
	)
}

type DecompiledMemo struct {
	Data    []byte
	Signers []ed25519.PublicKey
}

func DecompileMemo(i solana.Instruction) (*DecompiledMemo, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !utf8.Valid(i.Data) {
		return nil, ErrInvalidMemo
	}

	decompiled := &DecompiledMemo{Data: i.Data}
	for _, account := range i.Accounts {
		decompiled.Signers = append(decompiled.Signers, account.PublicKey)
	}
	return decompiled, nil
}

package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
)

// AssociatedTokenAccountProgramKey  is the address of the associated token account program that should be used.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedTokenAccountProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

const (
	commandCreate byte = iota
	commandCreateIdempotent
)

// GetAssociatedAccount returns the associated account address for an SPL token.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	addr, _, err := GetAssociatedAccountAndBump(wallet, mint)
	return addr, err
}

// GetAssociatedAccountAndBump is GetAssociatedAccount that also returns the
// bump seed used to derive the address.
func GetAssociatedAccountAndBump(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		AssociatedTokenAccountProgramKey,
		wallet,
		ProgramKey,
		mint,
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/0639953c7dd0f5228c3ceda3ba68fece3b46ff1d/associated-token-account/program/src/lib.rs#L54
func CreateAssociatedTokenAccount(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	return createAssociatedTokenAccount(commandCreate, subsidizer, wallet, mint)
}

// CreateAssociatedTokenAccountIdempotent is CreateAssociatedTokenAccount, except
// it succeeds when the account already exists with the expected mint and owner.
func CreateAssociatedTokenAccountIdempotent(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	return createAssociatedTokenAccount(commandCreateIdempotent, subsidizer, wallet, mint)
}

func createAssociatedTokenAccount(cmd byte, subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	addr, err := GetAssociatedAccount(wallet, mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return solana.NewInstruction(
		AssociatedTokenAccountProgramKey,
		[]byte{cmd},
		solana.NewAccountMeta(subsidizer, true),
		solana.NewAccountMeta(addr, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), addr, nil
}

type DecompiledCreateAssociatedAccount struct {
	Subsidizer ed25519.PublicKey
	Address    ed25519.PublicKey
	Owner      ed25519.PublicKey
	Mint       ed25519.PublicKey
	Idempotent bool
}

func DecompileCreateAssociatedAccount(i solana.Instruction) (*DecompiledCreateAssociatedAccount, error) {
	if !bytes.Equal(i.Program, AssociatedTokenAccountProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	// An empty payload is the original encoding of Create.
	var idempotent bool
	switch {
	case len(i.Data) == 0:
	case len(i.Data) == 1 && i.Data[0] == commandCreate:
	case len(i.Data) == 1 && i.Data[0] == commandCreateIdempotent:
		idempotent = true
	default:
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) < 6 {
		return nil, errors.Errorf("invalid number of accounts: %d (expected at least %d)", len(i.Accounts), 6)
	}
	if !bytes.Equal(i.Accounts[4].PublicKey, system.ProgramKey[:]) {
		return nil, errors.Errorf("system program key mismatch")
	}
	if !bytes.Equal(i.Accounts[5].PublicKey, ProgramKey) {
		return nil, errors.Errorf("token program key mismatch")
	}

	return &DecompiledCreateAssociatedAccount{
		Subsidizer: i.Accounts[0].PublicKey,
		Address:    i.Accounts[1].PublicKey,
		Owner:      i.Accounts[2].PublicKey,
		Mint:       i.Accounts[3].PublicKey,
		Idempotent: idempotent,
	}, nil
}

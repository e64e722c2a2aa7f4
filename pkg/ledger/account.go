package ledger

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
)

// NativeLoaderKey owns every program account the bank serves.
//
// Current key: NativeLoader1111111111111111111111111111111
var NativeLoaderKey ed25519.PublicKey

// SysvarProgramKey owns the sysvar accounts.
//
// Current key: Sysvar1111111111111111111111111111111111111
var SysvarProgramKey ed25519.PublicKey

// Account is the state of a single address as seen by programs.
type Account struct {
	Address    ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// AccountInfo is an account as passed to a program, along with the privileges
// the program holds over it.
type AccountInfo struct {
	*Account

	IsSigner   bool
	IsWritable bool
}

func newEmptyAccount(address ed25519.PublicKey) *Account {
	return &Account{
		Address: address,
		Owner:   system.ProgramKey[:],
	}
}

func (a *Account) Clone() Account {
	return Account{
		Address:    a.Address,
		Owner:      append(ed25519.PublicKey(nil), a.Owner...),
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Executable: a.Executable,
	}
}

// IsOwnedBy returns whether the account is owned by the provided program.
func (a *Account) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// IsEmpty returns whether the account is indistinguishable from one that has
// never been created.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.IsOwnedBy(system.ProgramKey[:]) && !a.Executable
}

func (a *Account) equals(other *Account) bool {
	return a.Lamports == other.Lamports &&
		a.Executable == other.Executable &&
		bytes.Equal(a.Owner, other.Owner) &&
		bytes.Equal(a.Data, other.Data)
}

// purge resets an account drained of lamports back to the empty state.
func (a *Account) purge() {
	if a.Lamports > 0 {
		return
	}

	a.Owner = system.ProgramKey[:]
	a.Data = nil
	a.Executable = false
}

func (a *Account) toRecord(slot uint64) *account.Record {
	return &account.Record{
		Address:    base58.Encode(a.Address),
		Owner:      base58.Encode(a.Owner),
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Executable: a.Executable,
		Slot:       slot,
	}
}

func fromRecord(r *account.Record) (*Account, error) {
	address, err := base58.Decode(r.Address)
	if err != nil {
		return nil, err
	}

	owner, err := base58.Decode(r.Owner)
	if err != nil {
		return nil, err
	}

	return &Account{
		Address:    address,
		Owner:      owner,
		Lamports:   r.Lamports,
		Data:       r.Data,
		Executable: r.Executable,
	}, nil
}

func init() {
	var err error

	NativeLoaderKey, err = base58.Decode("NativeLoader1111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SysvarProgramKey, err = base58.Decode("Sysvar1111111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction, with the
// permissions the instruction needs on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	isPayer    bool
	isProgram  bool
}

func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// SortableAccountMeta orders metas the way a message lists its accounts: the
// payer, then signers, then writable accounts, with programs last and ties
// broken by key.
type SortableAccountMeta []AccountMeta

func (s SortableAccountMeta) Len() int      { return len(s) }
func (s SortableAccountMeta) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s SortableAccountMeta) Less(i, j int) bool {
	a, b := s[i], s[j]
	switch {
	case a.isPayer != b.isPayer:
		return a.isPayer
	case a.isProgram != b.isProgram:
		return b.isProgram
	case a.IsSigner != b.IsSigner:
		return a.IsSigner
	case a.IsWritable != b.IsWritable:
		return a.IsWritable
	default:
		return bytes.Compare(a.PublicKey, b.PublicKey) < 0
	}
}

type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction references its program and accounts by index into the
// message's account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// DecompileInstruction expands the compiled instruction at the provided index
// back into an Instruction, recovering each account's permissions from the
// message header.
func DecompileInstruction(m Message, index int) (Instruction, error) {
	if index >= len(m.Instructions) {
		return Instruction{}, errors.Errorf("instruction doesn't exist at %d", index)
	}

	c := m.Instructions[index]
	if int(c.ProgramIndex) >= len(m.Accounts) {
		return Instruction{}, errors.Errorf("program index out of range: %d", c.ProgramIndex)
	}

	i := Instruction{
		Program:  m.Accounts[c.ProgramIndex],
		Data:     c.Data,
		Accounts: make([]AccountMeta, len(c.Accounts)),
	}
	for j, accountIndex := range c.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return Instruction{}, errors.Errorf("account index out of range: %d", accountIndex)
		}

		i.Accounts[j] = AccountMeta{
			PublicKey:  m.Accounts[accountIndex],
			IsSigner:   m.IsSigner(int(accountIndex)),
			IsWritable: m.IsWritable(int(accountIndex)),
		}
	}

	return i, nil
}

package ledger

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
)

// Program processes the instructions addressed to its program id. Failures are
// reported by returning a solana.CustomError or solana.InstructionErrorKey,
// optionally wrapped.
type Program interface {
	Process(ctx *InvokeContext) error
}

// ProgramFunc adapts a function into a Program.
type ProgramFunc func(ctx *InvokeContext) error

// Process implements Program.Process
func (f ProgramFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}

// ProgramRegistry is where programs are made available to a bank.
type ProgramRegistry interface {
	RegisterProgram(id ed25519.PublicKey, program Program)
}

// RegisterProgram makes a program available for execution under the provided
// id. Registering an id twice replaces the previous program.
func (b *Bank) RegisterProgram(id ed25519.PublicKey, program Program) {
	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	b.programs[base58.Encode(id)] = program

	b.log.WithField("program", base58.Encode(id)).Debug("registered program")
}

func (b *Bank) getProgram(id ed25519.PublicKey) (Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[base58.Encode(id)]
	return program, ok
}

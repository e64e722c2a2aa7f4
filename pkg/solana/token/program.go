package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
)

// ProgramKey is the SPL token program, TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA.
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// Command is the leading instruction data byte selecting a token operation.
// Only the commands the ledger executes are named.
type Command byte

const (
	CommandInitializeMint    Command = 0
	CommandInitializeAccount Command = 1
	CommandTransfer          Command = 3
	CommandSetAuthority      Command = 6
	CommandMintTo            Command = 7
	CommandBurn              Command = 8
	CommandCloseAccount      Command = 9

	CommandUnknown = Command(math.MaxUint8)
)

// Custom program errors, numbered as the on-chain token program numbers them.
const (
	ErrorNotRentExempt             solana.CustomError = 0
	ErrorInsufficientFunds         solana.CustomError = 1
	ErrorInvalidMint               solana.CustomError = 2
	ErrorMintMismatch              solana.CustomError = 3
	ErrorOwnerMismatch             solana.CustomError = 4
	ErrorFixedSupply               solana.CustomError = 5
	ErrorAlreadyInUse              solana.CustomError = 6
	ErrorUninitializedState        solana.CustomError = 9
	ErrorNonNativeHasBalance       solana.CustomError = 11
	ErrorInvalidInstruction        solana.CustomError = 12
	ErrorOverflow                  solana.CustomError = 14
	ErrorAuthorityTypeNotSupported solana.CustomError = 15
	ErrorMintCannotFreeze          solana.CustomError = 16
	ErrorAccountFrozen             solana.CustomError = 17
)

type AuthorityType byte

const (
	AuthorityTypeMintTokens AuthorityType = iota
	AuthorityTypeFreezeAccount
	AuthorityTypeAccountHolder
	AuthorityTypeCloseAccount
)

func GetCommand(i solana.Instruction) (Command, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}
	return Command(i.Data[0]), nil
}

// InitializeMint creates a mint with the given authorities. A nil freeze
// authority leaves the mint without one.
//
// Accounts: [writable] mint, [] rent sysvar.
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	data := append([]byte{byte(CommandInitializeMint), decimals}, mintAuthority...)
	data = appendOptionalKey(data, freezeAuthority)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecompileInitializeMint(i solana.Instruction) (*DecompiledInitializeMint, error) {
	if err := checkInstruction(i, CommandInitializeMint, 1); err != nil {
		return nil, err
	}
	if len(i.Data) < 2+ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	freezeAuthority, err := readOptionalKey(i.Data[2+ed25519.PublicKeySize:])
	if err != nil {
		return nil, err
	}

	return &DecompiledInitializeMint{
		Mint:            i.Accounts[0].PublicKey,
		Decimals:        i.Data[1],
		MintAuthority:   i.Data[2 : 2+ed25519.PublicKeySize],
		FreezeAuthority: freezeAuthority,
	}, nil
}

// InitializeAccount binds a created account to a mint and owner.
//
// Accounts: [writable] account, [] mint, [] owner, [] rent sysvar.
func InitializeAccount(account, mint, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandInitializeAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeAccount struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
}

func DecompileInitializeAccount(i solana.Instruction) (*DecompiledInitializeAccount, error) {
	if err := checkInstruction(i, CommandInitializeAccount, 4); err != nil {
		return nil, err
	}
	if len(i.Data) != 1 {
		return nil, solana.ErrIncorrectInstruction
	}
	if !bytes.Equal(system.RentSysVar, i.Accounts[3].PublicKey) {
		return nil, errors.New("invalid rent program")
	}

	return &DecompiledInitializeAccount{
		Account: i.Accounts[0].PublicKey,
		Mint:    i.Accounts[1].PublicKey,
		Owner:   i.Accounts[2].PublicKey,
	}, nil
}

// SetAuthority replaces one authority of a mint or account. A nil new
// authority removes it.
//
// Accounts: [writable] mint or account, [signer] current authority.
func SetAuthority(account, currentAuthority, newAuthority ed25519.PublicKey, authorityType AuthorityType) solana.Instruction {
	data := appendOptionalKey([]byte{byte(CommandSetAuthority), byte(authorityType)}, newAuthority)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(currentAuthority, true),
	)
}

type DecompiledSetAuthority struct {
	Account          ed25519.PublicKey
	CurrentAuthority ed25519.PublicKey
	NewAuthority     ed25519.PublicKey
	Type             AuthorityType
}

func DecompileSetAuthority(i solana.Instruction) (*DecompiledSetAuthority, error) {
	if err := checkInstruction(i, CommandSetAuthority, 2); err != nil {
		return nil, err
	}
	if len(i.Data) < 2 {
		return nil, errors.Errorf("invalid data size: %d (expect at least 3)", len(i.Data))
	}

	newAuthority, err := readOptionalKey(i.Data[2:])
	if err != nil {
		return nil, err
	}

	return &DecompiledSetAuthority{
		Account:          i.Accounts[0].PublicKey,
		CurrentAuthority: i.Accounts[1].PublicKey,
		NewAuthority:     newAuthority,
		Type:             AuthorityType(i.Data[1]),
	}, nil
}

// Transfer moves amount between two accounts of the same mint.
//
// Accounts: [writable] source, [writable] destination, [signer] owner.
func Transfer(source, dest, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandTransfer, amount, source, dest, owner)
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
	Amount      uint64
}

func DecompileTransfer(i solana.Instruction) (*DecompiledTransfer, error) {
	amount, err := decompileAmountInstruction(i, CommandTransfer)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		Source:      i.Accounts[0].PublicKey,
		Destination: i.Accounts[1].PublicKey,
		Owner:       i.Accounts[2].PublicKey,
		Amount:      amount,
	}, nil
}

// MintTo issues new tokens into an account.
//
// Accounts: [writable] mint, [writable] destination, [signer] mint authority.
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandMintTo, amount, mint, dest, authority)
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecompileMintTo(i solana.Instruction) (*DecompiledMintTo, error) {
	amount, err := decompileAmountInstruction(i, CommandMintTo)
	if err != nil {
		return nil, err
	}

	return &DecompiledMintTo{
		Mint:        i.Accounts[0].PublicKey,
		Destination: i.Accounts[1].PublicKey,
		Authority:   i.Accounts[2].PublicKey,
		Amount:      amount,
	}, nil
}

// Burn destroys tokens held by an account.
//
// Accounts: [writable] account, [writable] mint, [signer] owner.
func Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandBurn, amount, account, mint, owner)
}

type DecompiledBurn struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
	Amount  uint64
}

func DecompileBurn(i solana.Instruction) (*DecompiledBurn, error) {
	amount, err := decompileAmountInstruction(i, CommandBurn)
	if err != nil {
		return nil, err
	}

	return &DecompiledBurn{
		Account: i.Accounts[0].PublicKey,
		Mint:    i.Accounts[1].PublicKey,
		Owner:   i.Accounts[2].PublicKey,
		Amount:  amount,
	}, nil
}

// CloseAccount closes an empty token account, crediting its lamports to dest.
//
// Accounts: [writable] account, [writable] destination, [signer] owner.
func CloseAccount(account, dest, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandCloseAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledCloseAccount struct {
	Account     ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
}

func DecompileCloseAccount(i solana.Instruction) (*DecompiledCloseAccount, error) {
	if err := checkInstruction(i, CommandCloseAccount, 3); err != nil {
		return nil, err
	}
	if len(i.Data) != 1 {
		return nil, solana.ErrIncorrectInstruction
	}

	return &DecompiledCloseAccount{
		Account:     i.Accounts[0].PublicKey,
		Destination: i.Accounts[1].PublicKey,
		Owner:       i.Accounts[2].PublicKey,
	}, nil
}

func amountInstruction(cmd Command, amount uint64, writable1, writable2, signer ed25519.PublicKey) solana.Instruction {
	data := make([]byte, 9)
	data[0] = byte(cmd)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(writable1, false),
		solana.NewAccountMeta(writable2, false),
		solana.NewReadonlyAccountMeta(signer, true),
	)
}

func decompileAmountInstruction(i solana.Instruction, cmd Command) (uint64, error) {
	if err := checkInstruction(i, cmd, 3); err != nil {
		return 0, err
	}
	if len(i.Data) != 9 {
		return 0, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	return binary.LittleEndian.Uint64(i.Data[1:]), nil
}

func checkInstruction(i solana.Instruction, cmd Command, minAccounts int) error {
	if !bytes.Equal(i.Program, ProgramKey) {
		return solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || i.Data[0] != byte(cmd) {
		return solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) < minAccounts {
		return errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	return nil
}

// appendOptionalKey appends a COption<Pubkey>: a presence byte, then the key
// when present.
func appendOptionalKey(data []byte, key ed25519.PublicKey) []byte {
	if len(key) == 0 {
		return append(data, 0)
	}
	return append(append(data, 1), key...)
}

func readOptionalKey(b []byte) (ed25519.PublicKey, error) {
	switch {
	case len(b) == 1 && b[0] == 0:
		return nil, nil
	case len(b) == 1+ed25519.PublicKeySize && b[0] == 1:
		return b[1:], nil
	default:
		return nil, errors.Errorf("invalid optional key size: %d", len(b))
	}
}

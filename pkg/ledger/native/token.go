package native

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

func processToken(ctx *ledger.InvokeContext) error {
	ix := ctx.Instruction()

	cmd, err := token.GetCommand(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	switch cmd {
	case token.CommandInitializeMint:
		return processInitializeMint(ctx, ix)
	case token.CommandInitializeAccount:
		return processInitializeAccount(ctx, ix)
	case token.CommandTransfer:
		return processTokenTransfer(ctx, ix)
	case token.CommandMintTo:
		return processMintTo(ctx, ix)
	case token.CommandBurn:
		return processBurn(ctx, ix)
	case token.CommandSetAuthority:
		return processSetAuthority(ctx, ix)
	case token.CommandCloseAccount:
		return processCloseAccount(ctx, ix)
	default:
		return token.ErrorInvalidInstruction
	}
}

func processInitializeMint(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileInitializeMint(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	info := ctx.Accounts()[0]
	if !info.IsOwnedBy(token.ProgramKey) {
		return solana.InstructionErrorIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) {
		return solana.InstructionErrorInvalidAccountData
	}
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}

	mint = token.Mint{
		MintAuthority:   decompiled.MintAuthority,
		Decimals:        decompiled.Decimals,
		IsInitialized:   true,
		FreezeAuthority: decompiled.FreezeAuthority,
	}
	info.Data = mint.Marshal()

	ctx.Log("Instruction: InitializeMint")
	return nil
}

func processInitializeAccount(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileInitializeAccount(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	info := ctx.Accounts()[0]
	if !info.IsOwnedBy(token.ProgramKey) {
		return solana.InstructionErrorIncorrectProgramID
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return solana.InstructionErrorInvalidAccountData
	}
	if account.State != token.AccountStateUninitialized {
		return token.ErrorAlreadyInUse
	}

	if _, err := loadMint(ctx.Accounts()[1]); err != nil {
		return token.ErrorInvalidMint
	}

	account = token.Account{
		Mint:  decompiled.Mint,
		Owner: decompiled.Owner,
		State: token.AccountStateInitialized,
	}
	info.Data = account.Marshal()

	ctx.Log("Instruction: InitializeAccount")
	return nil
}

func processTokenTransfer(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileTransfer(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	sourceInfo, destInfo, ownerInfo := ctx.Accounts()[0], ctx.Accounts()[1], ctx.Accounts()[2]

	source, err := loadTokenAccount(sourceInfo)
	if err != nil {
		return err
	}
	dest, err := loadTokenAccount(destInfo)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}
	if err := validateOwner(source.Owner, ownerInfo); err != nil {
		return err
	}
	if source.Amount < decompiled.Amount {
		ctx.Log("Error: insufficient funds")
		return token.ErrorInsufficientFunds
	}

	ctx.Log("Instruction: Transfer")

	if bytes.Equal(sourceInfo.Address, destInfo.Address) {
		return nil
	}

	if dest.Amount+decompiled.Amount < dest.Amount {
		return token.ErrorOverflow
	}

	source.Amount -= decompiled.Amount
	dest.Amount += decompiled.Amount

	sourceInfo.Data = source.Marshal()
	destInfo.Data = dest.Marshal()
	return nil
}

func processMintTo(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileMintTo(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	mintInfo, destInfo, authorityInfo := ctx.Accounts()[0], ctx.Accounts()[1], ctx.Accounts()[2]

	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}
	dest, err := loadTokenAccount(destInfo)
	if err != nil {
		return err
	}

	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, mintInfo.Address) {
		return token.ErrorMintMismatch
	}
	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if err := validateOwner(mint.MintAuthority, authorityInfo); err != nil {
		return err
	}
	if mint.Supply+decompiled.Amount < mint.Supply || dest.Amount+decompiled.Amount < dest.Amount {
		return token.ErrorOverflow
	}

	mint.Supply += decompiled.Amount
	dest.Amount += decompiled.Amount

	mintInfo.Data = mint.Marshal()
	destInfo.Data = dest.Marshal()

	ctx.Log("Instruction: MintTo")
	return nil
}

func processBurn(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileBurn(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	accountInfo, mintInfo, ownerInfo := ctx.Accounts()[0], ctx.Accounts()[1], ctx.Accounts()[2]

	account, err := loadTokenAccount(accountInfo)
	if err != nil {
		return err
	}
	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}

	if account.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(account.Mint, mintInfo.Address) {
		return token.ErrorMintMismatch
	}
	if err := validateOwner(account.Owner, ownerInfo); err != nil {
		return err
	}
	if account.Amount < decompiled.Amount {
		return token.ErrorInsufficientFunds
	}

	account.Amount -= decompiled.Amount
	mint.Supply -= decompiled.Amount

	accountInfo.Data = account.Marshal()
	mintInfo.Data = mint.Marshal()

	ctx.Log("Instruction: Burn")
	return nil
}

func processSetAuthority(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := token.DecompileSetAuthority(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	info, currentInfo := ctx.Accounts()[0], ctx.Accounts()[1]
	if !info.IsOwnedBy(token.ProgramKey) {
		return solana.InstructionErrorIncorrectProgramID
	}

	ctx.Log("Instruction: SetAuthority")

	switch len(info.Data) {
	case token.MintSize:
		mint, err := loadMint(info)
		if err != nil {
			return err
		}

		switch decompiled.Type {
		case token.AuthorityTypeMintTokens:
			if len(mint.MintAuthority) == 0 {
				return token.ErrorFixedSupply
			}
			if err := validateOwner(mint.MintAuthority, currentInfo); err != nil {
				return err
			}
			mint.MintAuthority = decompiled.NewAuthority
		case token.AuthorityTypeFreezeAccount:
			if len(mint.FreezeAuthority) == 0 {
				return token.ErrorMintCannotFreeze
			}
			if err := validateOwner(mint.FreezeAuthority, currentInfo); err != nil {
				return err
			}
			mint.FreezeAuthority = decompiled.NewAuthority
		default:
			return token.ErrorAuthorityTypeNotSupported
		}

		info.Data = mint.Marshal()
		return nil
	case token.AccountSize:
		account, err := loadTokenAccount(info)
		if err != nil {
			return err
		}
		if account.State == token.AccountStateFrozen {
			return token.ErrorAccountFrozen
		}

		switch decompiled.Type {
		case token.AuthorityTypeAccountHolder:
			if len(decompiled.NewAuthority) == 0 {
				return token.ErrorInvalidInstruction
			}
			if err := validateOwner(account.Owner, currentInfo); err != nil {
				return err
			}
			account.Owner = decompiled.NewAuthority
			account.Delegate = nil
			account.DelegatedAmount = 0
		case token.AuthorityTypeCloseAccount:
			if err := validateOwner(closeAuthority(account), currentInfo); err != nil {
				return err
			}
			account.CloseAuthority = decompiled.NewAuthority
		default:
			return token.ErrorAuthorityTypeNotSupported
		}

		info.Data = account.Marshal()
		return nil
	default:
		return solana.InstructionErrorInvalidAccountData
	}
}

func processCloseAccount(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	if _, err := token.DecompileCloseAccount(ix); err != nil {
		return invalidInstruction(err)
	}

	accountInfo, destInfo, ownerInfo := ctx.Accounts()[0], ctx.Accounts()[1], ctx.Accounts()[2]
	if bytes.Equal(accountInfo.Address, destInfo.Address) {
		return solana.InstructionErrorInvalidAccountData
	}

	account, err := loadTokenAccount(accountInfo)
	if err != nil {
		return err
	}
	if account.Amount > 0 {
		return token.ErrorNonNativeHasBalance
	}
	if err := validateOwner(closeAuthority(account), ownerInfo); err != nil {
		return err
	}

	destInfo.Lamports += accountInfo.Lamports
	accountInfo.Lamports = 0
	accountInfo.Data = nil

	ctx.Log("Instruction: CloseAccount")
	return nil
}

func loadMint(info *ledger.AccountInfo) (*token.Mint, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.InstructionErrorIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) {
		return nil, solana.InstructionErrorInvalidAccountData
	}
	if !mint.IsInitialized {
		return nil, token.ErrorUninitializedState
	}
	return &mint, nil
}

func loadTokenAccount(info *ledger.AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.InstructionErrorIncorrectProgramID
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return nil, solana.InstructionErrorInvalidAccountData
	}
	if account.State == token.AccountStateUninitialized {
		return nil, token.ErrorUninitializedState
	}
	return &account, nil
}

func validateOwner(expected ed25519.PublicKey, info *ledger.AccountInfo) error {
	if !bytes.Equal(expected, info.Address) {
		return token.ErrorOwnerMismatch
	}
	return requireSigner(info)
}

func closeAuthority(account *token.Account) ed25519.PublicKey {
	if len(account.CloseAuthority) > 0 {
		return account.CloseAuthority
	}
	return account.Owner
}

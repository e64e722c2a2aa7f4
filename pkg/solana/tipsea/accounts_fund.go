package tipsea

import (
	"bytes"
	"crypto/ed25519"
	"strconv"

	"github.com/mr-tron/base58"
)

const FundAccountSize = (8 + // discriminator
	32 + // authority
	32 + // mint
	32 + // vault
	1 + // bump
	8 + // total_deposited
	8 + // total_redeemed
	8 + // total_withdrawn
	8) // num_tips

var fundAccountDiscriminator = []byte{49, 104, 168, 214, 134, 180, 173, 154}

// FundAccount is the per-mint fund. Its balance is held by the vault token
// account, not inline.
type FundAccount struct {
	Authority      ed25519.PublicKey
	Mint           ed25519.PublicKey
	Vault          ed25519.PublicKey
	Bump           uint8
	TotalDeposited uint64
	TotalRedeemed  uint64
	TotalWithdrawn uint64
	NumTips        uint64
}

func (obj *FundAccount) Clone() *FundAccount {
	cloned := *obj
	return &cloned
}

func (obj *FundAccount) ToString() string {
	return "FundAccount{" +
		"authority='" + base58.Encode(obj.Authority) + "'" +
		", mint='" + base58.Encode(obj.Mint) + "'" +
		", vault='" + base58.Encode(obj.Vault) + "'" +
		", bump='" + strconv.Itoa(int(obj.Bump)) + "'" +
		", total_deposited='" + strconv.FormatUint(obj.TotalDeposited, 10) + "'" +
		", total_redeemed='" + strconv.FormatUint(obj.TotalRedeemed, 10) + "'" +
		", total_withdrawn='" + strconv.FormatUint(obj.TotalWithdrawn, 10) + "'" +
		", num_tips='" + strconv.FormatUint(obj.NumTips, 10) + "'" +
		"}"
}

func (obj *FundAccount) Marshal() []byte {
	data := make([]byte, FundAccountSize)

	var offset int

	putDiscriminator(data, fundAccountDiscriminator, &offset)
	putKey(data, obj.Authority, &offset)
	putKey(data, obj.Mint, &offset)
	putKey(data, obj.Vault, &offset)
	putUint8(data, obj.Bump, &offset)
	putUint64(data, obj.TotalDeposited, &offset)
	putUint64(data, obj.TotalRedeemed, &offset)
	putUint64(data, obj.TotalWithdrawn, &offset)
	putUint64(data, obj.NumTips, &offset)

	return data
}

func (obj *FundAccount) Unmarshal(data []byte) error {
	if len(data) != FundAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	var discriminator []byte

	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, fundAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Authority, &offset)
	getKey(data, &obj.Mint, &offset)
	getKey(data, &obj.Vault, &offset)
	getUint8(data, &obj.Bump, &offset)
	getUint64(data, &obj.TotalDeposited, &offset)
	getUint64(data, &obj.TotalRedeemed, &offset)
	getUint64(data, &obj.TotalWithdrawn, &offset)
	getUint64(data, &obj.NumTips, &offset)

	return nil
}

// IsFundAccount reports whether the account data holds a fund.
func IsFundAccount(data []byte) bool {
	return len(data) == FundAccountSize && bytes.HasPrefix(data, fundAccountDiscriminator)
}

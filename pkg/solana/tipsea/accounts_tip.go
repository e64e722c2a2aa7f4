package tipsea

import (
	"bytes"
	"crypto/ed25519"
	"strconv"

	"github.com/mr-tron/base58"
)

const TipAccountSize = (8 + // discriminator
	32 + // fund
	32 + // claim_mint
	32 + // creator
	8 + // amount
	1 + // state
	1 + // bump
	33 + // redeemed_by
	8) // redeemed_at_slot

var tipAccountDiscriminator = []byte{203, 219, 137, 71, 186, 246, 27, 133}

// TipAccount records the funding behind a single claim token and whether it
// has been redeemed.
type TipAccount struct {
	Fund           ed25519.PublicKey
	ClaimMint      ed25519.PublicKey
	Creator        ed25519.PublicKey
	Amount         uint64
	State          TipState
	Bump           uint8
	RedeemedBy     ed25519.PublicKey // optional
	RedeemedAtSlot uint64
}

func (obj *TipAccount) Clone() *TipAccount {
	cloned := *obj
	return &cloned
}

func (obj *TipAccount) ToString() string {
	var redeemedBy string
	if obj.RedeemedBy != nil {
		redeemedBy = base58.Encode(obj.RedeemedBy)
	}

	return "TipAccount{" +
		"fund='" + base58.Encode(obj.Fund) + "'" +
		", claim_mint='" + base58.Encode(obj.ClaimMint) + "'" +
		", creator='" + base58.Encode(obj.Creator) + "'" +
		", amount='" + strconv.FormatUint(obj.Amount, 10) + "'" +
		", state='" + obj.State.String() + "'" +
		", bump='" + strconv.Itoa(int(obj.Bump)) + "'" +
		", redeemed_by='" + redeemedBy + "'" +
		", redeemed_at_slot='" + strconv.FormatUint(obj.RedeemedAtSlot, 10) + "'" +
		"}"
}

func (obj *TipAccount) Marshal() []byte {
	data := make([]byte, TipAccountSize)

	var offset int

	putDiscriminator(data, tipAccountDiscriminator, &offset)
	putKey(data, obj.Fund, &offset)
	putKey(data, obj.ClaimMint, &offset)
	putKey(data, obj.Creator, &offset)
	putUint64(data, obj.Amount, &offset)
	putTipState(data, obj.State, &offset)
	putUint8(data, obj.Bump, &offset)
	putOptionalKey(data, obj.RedeemedBy, &offset)
	putUint64(data, obj.RedeemedAtSlot, &offset)

	return data
}

func (obj *TipAccount) Unmarshal(data []byte) error {
	if len(data) != TipAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	var discriminator []byte

	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, tipAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Fund, &offset)
	getKey(data, &obj.ClaimMint, &offset)
	getKey(data, &obj.Creator, &offset)
	getUint64(data, &obj.Amount, &offset)
	getTipState(data, &obj.State, &offset)
	getUint8(data, &obj.Bump, &offset)
	getOptionalKey(data, &obj.RedeemedBy, &offset)
	getUint64(data, &obj.RedeemedAtSlot, &offset)

	return nil
}

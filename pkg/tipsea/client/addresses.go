package client

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
)

type derivedAddress struct {
	address ed25519.PublicKey
	bump    uint8
}

// derive returns a program derived address, consulting the cache first.
// Derivations are deterministic, so entries never go stale.
func (c *Client) derive(kind string, keys []ed25519.PublicKey, fn func() (ed25519.PublicKey, uint8, error)) (ed25519.PublicKey, uint8, error) {
	cacheKey := kind
	for _, key := range keys {
		cacheKey += ":" + base58.Encode(key)
	}

	if cached, ok := c.addresses.Get(cacheKey); ok {
		entry := cached.(*derivedAddress)
		return entry.address, entry.bump, nil
	}

	address, bump, err := fn()
	if err != nil {
		return nil, 0, err
	}

	c.addresses.Add(cacheKey, &derivedAddress{
		address: address,
		bump:    bump,
	})
	return address, bump, nil
}

// FundAddress returns the fund for an underlying mint and its bump.
func (c *Client) FundAddress(mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return c.derive("fund", []ed25519.PublicKey{mint}, func() (ed25519.PublicKey, uint8, error) {
		return tipsea.GetFundAddress(&tipsea.GetFundAddressArgs{
			Mint: mint,
		})
	})
}

// VaultAddress returns the token account custodying the fund for an
// underlying mint.
func (c *Client) VaultAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	fund, _, err := c.FundAddress(mint)
	if err != nil {
		return nil, err
	}

	vault, _, err := c.derive("vault", []ed25519.PublicKey{fund, mint}, func() (ed25519.PublicKey, uint8, error) {
		return tipsea.GetVaultAddress(&tipsea.GetVaultAddressArgs{
			Fund: fund,
			Mint: mint,
		})
	})
	return vault, err
}

// TipAddress returns the tip record for a claim mint.
func (c *Client) TipAddress(claimMint ed25519.PublicKey) (ed25519.PublicKey, error) {
	tip, _, err := c.derive("tip", []ed25519.PublicKey{claimMint}, func() (ed25519.PublicKey, uint8, error) {
		return tipsea.GetTipAddress(&tipsea.GetTipAddressArgs{
			ClaimMint: claimMint,
		})
	})
	return tip, err
}

func (c *Client) metadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	metadata, _, err := c.derive("metadata", []ed25519.PublicKey{mint}, func() (ed25519.PublicKey, uint8, error) {
		return tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
			Mint: mint,
		})
	})
	return metadata, err
}

func (c *Client) masterEditionAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	edition, _, err := c.derive("edition", []ed25519.PublicKey{mint}, func() (ed25519.PublicKey, uint8, error) {
		return tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
			Mint: mint,
		})
	})
	return edition, err
}

// AssociatedTokenAddress returns the associated token account of an owner for
// a mint.
func (c *Client) AssociatedTokenAddress(owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	ata, _, err := c.derive("ata", []ed25519.PublicKey{owner, mint}, func() (ed25519.PublicKey, uint8, error) {
		return token.GetAssociatedAccountAndBump(owner, mint)
	})
	return ata, err
}

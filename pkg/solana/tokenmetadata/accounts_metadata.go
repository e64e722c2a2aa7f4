package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxUriLength    = 200
	MaxCreators     = 5

	MaxSellerFeeBasisPoints = 10_000
)

const (
	CreatorSize = (32 + // address
		1 + // verified
		1) // share

	MetadataAccountSize = (1 + // key
		32 + // update_authority
		32 + // mint
		4 + MaxNameLength + // name
		4 + MaxSymbolLength + // symbol
		4 + MaxUriLength + // uri
		2 + // seller_fee_basis_points
		1 + 4 + MaxCreators*CreatorSize + // creators
		1 + // primary_sale_happened
		1) // is_mutable
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

// Data is the user facing portion of a metadata account.
type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

type MetadataAccount struct {
	UpdateAuthority     ed25519.PublicKey
	Mint                ed25519.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
}

func (obj *MetadataAccount) Marshal() []byte {
	data := make([]byte, MetadataAccountSize)

	var offset int

	putKeyType(data, KeyMetadataV1, &offset)
	putKey(data, obj.UpdateAuthority, &offset)
	putKey(data, obj.Mint, &offset)
	putData(data, &obj.Data, &offset)
	putBool(data, obj.PrimarySaleHappened, &offset)
	putBool(data, obj.IsMutable, &offset)

	return data
}

func (obj *MetadataAccount) Unmarshal(data []byte) error {
	if len(data) < 1+2*ed25519.PublicKeySize {
		return ErrInvalidAccountData
	}

	var offset int

	var key Key
	getKeyType(data, &key, &offset)
	if key != KeyMetadataV1 {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.UpdateAuthority, &offset)
	getKey(data, &obj.Mint, &offset)
	if err := getData(data, &obj.Data, &offset); err != nil {
		return err
	}

	if len(data) < offset+2 {
		return ErrInvalidAccountData
	}
	getBool(data, &obj.PrimarySaleHappened, &offset)
	getBool(data, &obj.IsMutable, &offset)

	return nil
}

func (obj *MetadataAccount) String() string {
	return fmt.Sprintf(
		"MetadataAccount{update_authority=%s,mint=%s,name=%s,symbol=%s,uri=%s,seller_fee_basis_points=%d,creators=%d,is_mutable=%v}",
		base58.Encode(obj.UpdateAuthority),
		base58.Encode(obj.Mint),
		obj.Data.Name,
		obj.Data.Symbol,
		obj.Data.Uri,
		obj.Data.SellerFeeBasisPoints,
		len(obj.Data.Creators),
		obj.IsMutable,
	)
}

// IsMetadataAccount reports whether the account data holds a metadata account.
func IsMetadataAccount(data []byte) bool {
	return len(data) > 0 && Key(data[0]) == KeyMetadataV1
}

func dataSize(obj *Data) int {
	size := stringSize(obj.Name) + stringSize(obj.Symbol) + stringSize(obj.Uri) + 2 + 1
	if obj.Creators != nil {
		size += 4 + len(obj.Creators)*CreatorSize
	}
	return size
}

func putData(dst []byte, obj *Data, offset *int) {
	putString(dst, obj.Name, offset)
	putString(dst, obj.Symbol, offset)
	putString(dst, obj.Uri, offset)
	putUint16(dst, obj.SellerFeeBasisPoints, offset)

	if obj.Creators == nil {
		putUint8(dst, 0, offset)
		return
	}

	putUint8(dst, 1, offset)
	putUint32(dst, uint32(len(obj.Creators)), offset)
	for _, creator := range obj.Creators {
		putKey(dst, creator.Address, offset)
		putBool(dst, creator.Verified, offset)
		putUint8(dst, creator.Share, offset)
	}
}

func getData(src []byte, obj *Data, offset *int) error {
	if err := getString(src, &obj.Name, offset); err != nil {
		return err
	}
	if err := getString(src, &obj.Symbol, offset); err != nil {
		return err
	}
	if err := getString(src, &obj.Uri, offset); err != nil {
		return err
	}

	if len(src) < *offset+3 {
		return ErrInvalidAccountData
	}
	getUint16(src, &obj.SellerFeeBasisPoints, offset)

	var hasCreators bool
	getBool(src, &hasCreators, offset)
	obj.Creators = nil
	if !hasCreators {
		return nil
	}

	if len(src) < *offset+4 {
		return ErrInvalidAccountData
	}
	var count uint32
	getUint32(src, &count, offset)
	if count > MaxCreators || len(src) < *offset+int(count)*CreatorSize {
		return ErrInvalidAccountData
	}

	obj.Creators = make([]Creator, count)
	for i := range obj.Creators {
		getKey(src, &obj.Creators[i].Address, offset)
		getBool(src, &obj.Creators[i].Verified, offset)
		getUint8(src, &obj.Creators[i].Share, offset)
	}
	return nil
}

// HasCreator reports whether the address is listed as a creator.
func (obj *Data) HasCreator(address ed25519.PublicKey) bool {
	for _, creator := range obj.Creators {
		if bytes.Equal(creator.Address, address) {
			return true
		}
	}
	return false
}

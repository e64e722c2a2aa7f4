package tokenmetadata

const (
	MasterEditionAccountSize = (1 + // key
		8 + // supply
		1 + 8) // max_supply
)

type MasterEditionAccount struct {
	Supply    uint64
	MaxSupply *uint64 // optional, nil means unlimited prints
}

func (obj *MasterEditionAccount) Marshal() []byte {
	data := make([]byte, MasterEditionAccountSize)

	var offset int

	putKeyType(data, KeyMasterEditionV2, &offset)
	putUint64(data, obj.Supply, &offset)
	putOptionalUint64(data, obj.MaxSupply, &offset)

	return data
}

func (obj *MasterEditionAccount) Unmarshal(data []byte) error {
	if len(data) != MasterEditionAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var key Key
	getKeyType(data, &key, &offset)
	if key != KeyMasterEditionV2 {
		return ErrInvalidAccountData
	}

	getUint64(data, &obj.Supply, &offset)
	getOptionalUint64(data, &obj.MaxSupply, &offset)

	return nil
}

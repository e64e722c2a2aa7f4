package tokenmetadata

// Key identifies the type of a token metadata account. It is the first byte
// of every account owned by the program.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
)

func putKeyType(dst []byte, v Key, offset *int) {
	putUint8(dst, uint8(v), offset)
}
func getKeyType(src []byte, dst *Key, offset *int) {
	var v uint8
	getUint8(src, &v, offset)
	*dst = Key(v)
}

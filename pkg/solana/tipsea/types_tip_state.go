package tipsea

type TipState uint8

const (
	TipStateUnknown TipState = iota
	TipStateUnredeemed
	TipStateRedeemed
)

func putTipState(dst []byte, v TipState, offset *int) {
	putUint8(dst, uint8(v), offset)
}

func getTipState(src []byte, dst *TipState, offset *int) {
	var v uint8
	getUint8(src, &v, offset)
	*dst = TipState(v)
}

func (s TipState) String() string {
	switch s {
	case TipStateUnknown:
		return "unknown"
	case TipStateUnredeemed:
		return "unredeemed"
	case TipStateRedeemed:
		return "redeemed"
	}

	return "unknown"
}

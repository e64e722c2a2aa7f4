package tipsea

import (
	"bytes"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitializeTipsea
	InstructionTypeCreateTipsea
	InstructionTypeRedeem
	InstructionTypeWithdraw
)

// GetInstructionType maps the instruction discriminator to its type.
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) < 8 {
		return InstructionTypeUnknown, ErrInvalidInstructionData
	}

	switch {
	case bytes.Equal(data[:8], initializeTipseaInstructionDiscriminator):
		return InstructionTypeInitializeTipsea, nil
	case bytes.Equal(data[:8], createTipseaInstructionDiscriminator):
		return InstructionTypeCreateTipsea, nil
	case bytes.Equal(data[:8], redeemInstructionDiscriminator):
		return InstructionTypeRedeem, nil
	case bytes.Equal(data[:8], withdrawInstructionDiscriminator):
		return InstructionTypeWithdraw, nil
	}

	return InstructionTypeUnknown, ErrInvalidInstructionData
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitializeTipsea:
		return "initialize_tipsea"
	case InstructionTypeCreateTipsea:
		return "create_tipsea"
	case InstructionTypeRedeem:
		return "redeem"
	case InstructionTypeWithdraw:
		return "withdraw"
	}

	return "unknown"
}

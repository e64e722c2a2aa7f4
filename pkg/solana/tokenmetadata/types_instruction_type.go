package tokenmetadata

type InstructionType uint8

// Only the instructions used to issue a one-of-one token are supported.
const (
	InstructionTypeCreateMasterEditionV3   InstructionType = 17
	InstructionTypeCreateMetadataAccountV3 InstructionType = 33
)

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}

// GetInstructionType returns the type of a token metadata instruction.
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) == 0 {
		return 0, ErrInvalidInstructionData
	}
	return InstructionType(data[0]), nil
}

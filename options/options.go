// Package options defines the architecture-selection enumerations and
// formatter configuration shared by the codec. It carries no logic of
// its own beyond value construction and bit-mask helpers.
package options

// InstructionSet identifies the default instruction set the codec
// should target.
type InstructionSet uint8

const (
	ArmV2 InstructionSet = iota
	ArmV2a
	ArmV3
	ArmV4
	ArmV5
	ArmV6
	ArmV7
)

func (s InstructionSet) String() string {
	switch s {
	case ArmV2:
		return "ARMv2"
	case ArmV2a:
		return "ARMv2a"
	case ArmV3:
		return "ARMv3"
	case ArmV4:
		return "ARMv4"
	case ArmV5:
		return "ARMv5"
	case ArmV6:
		return "ARMv6"
	case ArmV7:
		return "ARMv7"
	default:
		return "unknown"
	}
}

// ArchExtension is a bit mask of architecture extensions available in
// addition to the base InstructionSet.
type ArchExtension uint16

const (
	ExtNone    ArchExtension = 0
	ExtFpa     ArchExtension = 1 << 0
	ExtVfpV1   ArchExtension = 1 << 1
	ExtVfpV2   ArchExtension = 1 << 2
	ExtVfpV3   ArchExtension = 1 << 3
	ExtVfpV4   ArchExtension = 1 << 4
	ExtNeon    ArchExtension = 1 << 5
	ExtThumbV1 ArchExtension = 1 << 6
	ExtThumbV2 ArchExtension = 1 << 7
	ExtBreakPt ArchExtension = 1 << 8

	ExtMask ArchExtension = 0x1FF
)

// Has reports whether ext is present in the mask.
func (m ArchExtension) Has(ext ArchExtension) bool {
	return m&ext != 0
}

// DecodeFlags controls which instructions the disassembler recognises
// and how ambiguous block-transfer mnemonics are rendered.
type DecodeFlags struct {
	InstructionSet InstructionSet
	Extensions     ArchExtension

	// AllowFPA enables recognition of FPA co-processor instructions
	// regardless of the Extensions mask (kept distinct so callers can
	// probe FPA support independently of the rest of the bitmask).
	AllowFPA bool

	// StackStyleAlways renders block load/store with stack-mnemonic
	// suffixes (FD/FA/ED/EA) unconditionally. When false, stack-style
	// is only used when Rn is R13 (SP).
	StackStyleAlways bool

	// AllowThumbInterworking enables BX/BLX decode.
	AllowThumbInterworking bool

	// AllowBreakpoint enables decode of the BKPT encoding.
	AllowBreakpoint bool
}

// DirectiveDataType expresses the data types expected in data
// directives the codec's format stage can emit for undecodeable words.
type DirectiveDataType uint8

const (
	DirectiveByte DirectiveDataType = iota
	DirectiveHalfWord
	DirectiveWord
	DirectiveLongWord
)

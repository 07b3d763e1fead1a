package codec

import (
	"fmt"

	"github.com/lookbusy1344/archemu/binary"
)

// ShifterMode identifies which fields of a ShifterOperand are
// significant.
type ShifterMode uint8

const (
	ImmediateConstant ShifterMode = iota
	Register
	ShiftByRegister
	ShiftByConstant
	RotateWithExtend // RRX
)

// ShiftType is the barrel-shifter operation applied to Rm.
type ShiftType uint8

const (
	ShiftNone ShiftType = iota
	LSL
	LSR
	ASR
	ROR
	RRX
)

// ShifterOperand appears inside ALU, data-transfer, and compare
// variants.
type ShifterOperand struct {
	Mode      ShifterMode
	ShiftType ShiftType
	Rm        uint8
	Rs        uint8
	Immediate uint32 // constant value, or shift amount, mode-dependent
}

// Canonicalize applies the decode-time normalisation rules so that
// every semantically-equivalent shifter encoding maps to one canonical
// in-memory representation:
//
//	<Rm>, LSL #0   collapses to <Rm>
//	<Rm>, LSR #0   expands to <Rm>, LSR #32
//	<Rm>, ASR #0   expands to <Rm>, ASR #32
//	<Rm>, ROR #0   becomes <Rm>, RRX
func (s ShifterOperand) Canonicalize() ShifterOperand {
	if s.Mode != ShiftByConstant {
		return s
	}

	switch s.ShiftType {
	case LSL:
		if s.Immediate == 0 {
			s.ShiftType = ShiftNone
		}
	case LSR, ASR:
		if s.Immediate == 0 {
			s.Immediate = 32
		}
	case ROR:
		if s.Immediate == 0 {
			s.Mode = RotateWithExtend
			s.ShiftType = RRX
			s.Immediate = 0
		}
	}

	return s
}

// EncodeImmediateConstant finds a rotation 0..30 (even) such that
// rotating value left by that amount yields a byte (<=255); the first
// match in ascending rotation order is returned as (rotate/2, imm8).
// Returns an error if no rotation produces a representable byte.
func EncodeImmediateConstant(value uint32) (rotate uint8, imm8 uint8, err error) {
	for r := 0; r <= 30; r += 2 {
		rotated := binary.RotateLeft32(value, r)
		if rotated <= 0xFF {
			return uint8(r / 2), uint8(rotated), nil
		}
	}

	return 0, 0, fmt.Errorf("value %#08x cannot be encoded as an immediate constant", value)
}

// DecodeImmediateConstant reverses EncodeImmediateConstant: the field
// stores imm8 rotated right by rotate*2.
func DecodeImmediateConstant(rotate uint8, imm8 uint8) uint32 {
	return binary.RotateRight32(uint32(imm8), int(rotate)*2)
}

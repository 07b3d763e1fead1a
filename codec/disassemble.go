package codec

import (
	"fmt"

	"github.com/lookbusy1344/archemu/options"
)

// Disassemble decodes one 32-bit little-endian instruction word into
// an Instruction descriptor. word is assumed to already be in host
// byte order (callers translate target endianness via binary.ByteOrder
// before calling in). addr is the address the word was fetched from,
// needed to resolve PC-relative branch targets. Disassemble looks at
// one word only and does not fold ADR sequences; FoldAdr does that
// over already-decoded instructions.
func Disassemble(word uint32, addr uint32, flags options.DecodeFlags) Instruction {
	cond := ConditionCode((word >> 28) & 0xF)

	if cond == CondNV {
		if inst, ok := decodeUnconditional(word, flags); ok {
			return inst
		}

		return Instruction{Class: None, Cond: cond, Params: NoneParams{RawWord: word}}
	}

	if inst, ok := decodeConditional(word, addr, cond, flags); ok {
		return inst
	}

	return Instruction{Class: None, Cond: cond, Params: NoneParams{RawWord: word}}
}

func decodeUnconditional(word uint32, flags options.DecodeFlags) (Instruction, bool) {
	// Reserved in this core; the Archimedes ARM2/ARM3 never defines an
	// unconditional instruction space.
	_ = word
	_ = flags

	return Instruction{}, false
}

func decodeConditional(word uint32, addr uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	switch {
	case word&0x0FFFFFF0 == 0x012FFF10:
		return decodeBranchExchange(word, cond, flags)
	case flags.Extensions.Has(options.ExtBreakPt) && word&0x0FF000F0 == 0x01200070:
		return decodeBreakpoint(word, cond, flags)
	case word&0x0FC000F0 == 0x00000090:
		return decodeMultiply(word, cond)
	case word&0x0F8000F0 == 0x00800090:
		return decodeLongMultiply(word, cond, flags)
	case word&0x0FB00FF0 == 0x01000090:
		return decodeSwap(word, cond)
	case (word>>26)&0x3 == 0x0 && word&0x0FBF0FFF == 0x010F0000:
		return decodeMRS(word, cond)
	case (word>>26)&0x3 == 0x0 && word&0x0DB0F000 == 0x0120F000 &&
		(word&0x02000000 != 0 || word&0x00000FF0 == 0):
		return decodeMSR(word, cond)
	case (word>>25)&0x7 == 0x0 && word&0x90 == 0x90 && (word>>5)&0x3 != 0:
		// Halfword/signed data transfer: bits 27-25 = 000, bit 7 = 1,
		// bit 4 = 1, and bits 6-5 non-zero select byte/halfword width.
		// Tested after MRS/MSR, which fully qualify bits 4-7 as zero.
		return decodeHalfwordTransfer(word, cond)
	case (word>>26)&0x3 == 0x0:
		return decodeDataProcessing(word, cond)
	case (word>>26)&0x3 == 0x1:
		return decodeSingleDataTransfer(word, cond)
	case (word>>25)&0x7 == 0x4:
		return decodeBlockDataTransfer(word, cond)
	case (word>>25)&0x7 == 0x5:
		return decodeBranchOrFold(word, addr, cond)
	case (word>>24)&0xF == 0xF:
		return decodeSoftwareIrq(word, cond)
	case (word>>25)&0x7 == 0x6:
		return decodeCoProcDataTransfer(word, cond, flags)
	case (word>>24)&0xF == 0xE && word&0x10 == 0:
		return decodeCoProcDataProcessing(word, cond, flags)
	case (word>>24)&0xF == 0xE && word&0x10 != 0:
		return decodeCoProcRegisterTransfer(word, cond, flags)
	default:
		return Instruction{}, false
	}
}

func decodeDataProcessing(word uint32, cond ConditionCode) (Instruction, bool) {
	op := AluOp((word >> 21) & 0xF)
	s := (word>>20)&1 != 0
	rn := uint8((word >> 16) & 0xF)
	rd := uint8((word >> 12) & 0xF)

	shifter := decodeShifterOperand(word)

	if op.IsCompareOnly() {
		return Instruction{
			Class: CoreCompare,
			Cond:  cond,
			Params: CoreCompareParams{
				Op:      op,
				Rn:      rn,
				Shifter: shifter,
			},
		}, true
	}

	return Instruction{
		Class: CoreAlu,
		Cond:  cond,
		Params: CoreAluParams{
			Op:      op,
			S:       s,
			Rd:      rd,
			Rn:      rn,
			Shifter: shifter,
		},
	}, true
}

func decodeShifterOperand(word uint32) ShifterOperand {
	if word&0x02000000 != 0 {
		rotate := uint8((word >> 8) & 0xF)
		imm8 := uint8(word & 0xFF)

		return ShifterOperand{
			Mode:      ImmediateConstant,
			Immediate: DecodeImmediateConstant(rotate, imm8),
		}
	}

	rm := uint8(word & 0xF)
	shiftType := ShiftType(((word >> 5) & 0x3) + 1)

	if word&0x10 != 0 {
		return ShifterOperand{
			Mode:      ShiftByRegister,
			ShiftType: shiftType,
			Rm:        rm,
			Rs:        uint8((word >> 8) & 0xF),
		}
	}

	op := ShifterOperand{
		Mode:      ShiftByConstant,
		ShiftType: shiftType,
		Rm:        rm,
		Immediate: (word >> 7) & 0x1F,
	}

	return op.Canonicalize()
}

func decodeMultiply(word uint32, cond ConditionCode) (Instruction, bool) {
	return Instruction{
		Class: CoreMultiply,
		Cond:  cond,
		Params: CoreMultiplyParams{
			Accumulate: word&0x00200000 != 0,
			S:          word&0x00100000 != 0,
			Rd:         uint8((word >> 16) & 0xF),
			Rn:         uint8((word >> 12) & 0xF),
			Rs:         uint8((word >> 8) & 0xF),
			Rm:         uint8(word & 0xF),
		},
	}, true
}

func decodeLongMultiply(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	if flags.InstructionSet < options.ArmV4 {
		return Instruction{}, false
	}

	return Instruction{
		Class: LongMultiply,
		Cond:  cond,
		Params: LongMultiplyParams{
			Signed:     word&0x00400000 != 0,
			Accumulate: word&0x00200000 != 0,
			S:          word&0x00100000 != 0,
			RdHi:       uint8((word >> 16) & 0xF),
			RdLo:       uint8((word >> 12) & 0xF),
			Rs:         uint8((word >> 8) & 0xF),
			Rm:         uint8(word & 0xF),
		},
	}, true
}

func decodeSwap(word uint32, cond ConditionCode) (Instruction, bool) {
	return Instruction{
		Class: AtomicSwap,
		Cond:  cond,
		Params: AtomicSwapParams{
			Byte: word&0x00400000 != 0,
			Rn:   uint8((word >> 16) & 0xF),
			Rd:   uint8((word >> 12) & 0xF),
			Rm:   uint8(word & 0xF),
		},
	}, true
}

func decodeMRS(word uint32, cond ConditionCode) (Instruction, bool) {
	return Instruction{
		Class: MoveFromPSR,
		Cond:  cond,
		Params: MoveFromPSRParams{
			Rd:   uint8((word >> 12) & 0xF),
			SPSR: word&0x00400000 != 0,
		},
	}, true
}

func decodeMSR(word uint32, cond ConditionCode) (Instruction, bool) {
	spsr := word&0x00400000 != 0
	flagsOnly := word&0x00010000 == 0

	if word&0x02000000 != 0 {
		rotate := uint8((word >> 8) & 0xF)
		imm8 := uint8(word & 0xFF)

		return Instruction{
			Class: MoveToPSR,
			Cond:  cond,
			Params: MoveToPSRParams{
				SPSR:       spsr,
				FlagsOnly:  flagsOnly,
				Immediate:  true,
				RotateImm8: DecodeImmediateConstant(rotate, imm8),
			},
		}, true
	}

	return Instruction{
		Class: MoveToPSR,
		Cond:  cond,
		Params: MoveToPSRParams{
			SPSR:      spsr,
			FlagsOnly: flagsOnly,
			Rm:        uint8(word & 0xF),
		},
	}, true
}

func decodeBranchExchange(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	if !flags.AllowThumbInterworking && flags.InstructionSet < options.ArmV4 {
		return Instruction{}, false
	}

	return Instruction{
		Class: BranchExchange,
		Cond:  cond,
		Params: BranchExchangeParams{
			Rm: uint8(word & 0xF),
		},
	}, true
}

func decodeBreakpoint(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	if !flags.AllowBreakpoint {
		return Instruction{}, false
	}

	comment := uint16(((word>>8)&0xFFF)<<4 | (word & 0xF))

	return Instruction{
		Class:  Breakpoint,
		Cond:   cond,
		Params: BreakpointParams{Comment: comment},
	}, true
}

func decodeHalfwordTransfer(word uint32, cond ConditionCode) (Instruction, bool) {
	load := word&0x00100000 != 0
	signExt := word&0x00000040 != 0
	half := word&0x00000020 != 0

	var size TransferSize

	switch {
	case !signExt && half:
		size = TransferHalfWord
	case signExt && !half:
		size = TransferSignedByte
	case signExt && half:
		size = TransferSignedHalfWord
	default:
		return Instruction{}, false
	}

	var flags AddressFlags
	if word&0x01000000 != 0 {
		flags |= PreIndexed
	}

	if word&0x00800000 == 0 {
		flags |= NegativeOffset
	}

	if word&0x00200000 != 0 {
		flags |= Writeback
	}

	var offset ShifterOperand
	if word&0x00400000 != 0 {
		imm := ((word >> 4) & 0xF0) | (word & 0xF)
		offset = ShifterOperand{Mode: ImmediateConstant, Immediate: imm}
	} else {
		offset = ShifterOperand{Mode: Register, Rm: uint8(word & 0xF)}
	}

	return Instruction{
		Class: CoreDataTransfer,
		Cond:  cond,
		Params: CoreDataTransferParams{
			Load: load,
			Size: size,
			Rd:   uint8((word >> 12) & 0xF),
			Address: AddressOperand{
				Rn:     uint8((word >> 16) & 0xF),
				Offset: offset,
				Flags:  flags,
			},
		},
	}, true
}

func decodeSingleDataTransfer(word uint32, cond ConditionCode) (Instruction, bool) {
	load := word&0x00100000 != 0
	byteTransfer := word&0x00400000 != 0

	size := TransferWord
	if byteTransfer {
		size = TransferByte
	}

	var flags AddressFlags
	if word&0x01000000 != 0 {
		flags |= PreIndexed
	}

	if word&0x00800000 == 0 {
		flags |= NegativeOffset
	}

	if word&0x00200000 != 0 {
		flags |= Writeback
	}

	var offset ShifterOperand
	if word&0x02000000 == 0 {
		offset = ShifterOperand{Mode: ImmediateConstant, Immediate: word & 0xFFF}
	} else {
		shiftType := ShiftType(((word >> 5) & 0x3) + 1)
		offset = ShifterOperand{
			Mode:      ShiftByConstant,
			ShiftType: shiftType,
			Rm:        uint8(word & 0xF),
			Immediate: (word >> 7) & 0x1F,
		}.Canonicalize()
	}

	return Instruction{
		Class: CoreDataTransfer,
		Cond:  cond,
		Params: CoreDataTransferParams{
			Load: load,
			Size: size,
			Rd:   uint8((word >> 12) & 0xF),
			Address: AddressOperand{
				Rn:     uint8((word >> 16) & 0xF),
				Offset: offset,
				Flags:  flags,
			},
		},
	}, true
}

func decodeBlockDataTransfer(word uint32, cond ConditionCode) (Instruction, bool) {
	p := word&0x01000000 != 0
	u := word&0x00800000 != 0

	var mode MultiTransferMode

	switch {
	case !p && u:
		mode = IA
	case p && u:
		mode = IB
	case !p && !u:
		mode = DA
	default:
		mode = DB
	}

	return Instruction{
		Class: CoreMultiTransfer,
		Cond:  cond,
		Params: CoreMultiTransferParams{
			Load:      word&0x00100000 != 0,
			Mode:      mode,
			Rn:        uint8((word >> 16) & 0xF),
			Writeback: word&0x00200000 != 0,
			UserBank:  word&0x00400000 != 0,
			RegList:   uint16(word & 0xFFFF),
		},
	}, true
}

func decodeBranchOrFold(word uint32, addr uint32, cond ConditionCode) (Instruction, bool) {
	offset := word & 0x00FFFFFF

	signExtended := int32(offset << 8) >> 8
	target := uint32(int64(addr) + 8 + int64(signExtended)*4)

	return Instruction{
		Class: Branch,
		Cond:  cond,
		Params: BranchParams{
			Link:   word&0x01000000 != 0,
			Target: target,
		},
	}, true
}

func decodeSoftwareIrq(word uint32, cond ConditionCode) (Instruction, bool) {
	return Instruction{
		Class:  SoftwareIrq,
		Cond:   cond,
		Params: SoftwareIrqParams{Comment: word & 0x00FFFFFF},
	}, true
}

const fpaCoProcMin, fpaCoProcMax = 1, 2

func isFpaCoProc(cp uint8) bool {
	return cp >= fpaCoProcMin && cp <= fpaCoProcMax
}

func decodeCoProcDataTransfer(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	cp := uint8((word >> 8) & 0xF)

	var addrFlags AddressFlags
	if word&0x01000000 != 0 {
		addrFlags |= PreIndexed
	}

	if word&0x00800000 == 0 {
		addrFlags |= NegativeOffset
	}

	if word&0x00200000 != 0 {
		addrFlags |= Writeback
	}

	offset := ShifterOperand{Mode: ImmediateConstant, Immediate: (word & 0xFF) << 2}
	address := AddressOperand{
		Rn:     uint8((word >> 16) & 0xF),
		Offset: offset,
		Flags:  addrFlags,
	}

	crd := uint8((word >> 12) & 0xF)
	load := word&0x00100000 != 0

	if flags.AllowFPA && isFpaCoProc(cp) {
		precision := FpaSingle
		if word&0x00400000 != 0 {
			precision = FpaExtended
		}

		return Instruction{
			Class: FpaDataTransfer,
			Cond:  cond,
			Params: FpaDataTransferParams{
				Load:      load,
				Precision: precision,
				Fd:        crd,
				Address:   address,
			},
		}, true
	}

	return Instruction{
		Class: CoProcDataTransfer,
		Cond:  cond,
		Params: CoProcDataTransferParams{
			Load:    load,
			Long:    word&0x00400000 != 0,
			CoProc:  cp,
			CRd:     crd,
			Address: address,
		},
	}, true
}

func decodeCoProcDataProcessing(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	cp := uint8((word >> 8) & 0xF)
	crn := uint8((word >> 16) & 0xF)
	crd := uint8((word >> 12) & 0xF)
	crm := uint8(word & 0xF)
	info := uint8((word >> 5) & 0x7)
	opcode := uint8((word >> 20) & 0xF)

	if flags.AllowFPA && isFpaCoProc(cp) {
		return decodeFpaDataProcessing(opcode, crn, crd, crm, info, cond)
	}

	return Instruction{
		Class: CoProcDataProcessing,
		Cond:  cond,
		Params: CoProcDataProcessingParams{
			CoProc: cp,
			Opcode: opcode,
			CRd:    crd,
			CRn:    crn,
			CRm:    crm,
			Info:   info,
		},
	}, true
}

// decodeFpaDataProcessing recognises the dyadic/monadic FPA opcode
// split (bit 3 of the opcode field) and aliases CRn/CRm onto the FPA
// register fields; the exact historical opcode-to-mnemonic table is
// only partially documented, so Mnemonic is left for the caller's
// format layer to fill from Opcode when known.
func decodeFpaDataProcessing(opcode, crn, crd, crm, info uint8, cond ConditionCode) (Instruction, bool) {
	precision := FpaSingle
	switch info & 0x3 {
	case 1:
		precision = FpaDouble
	case 2, 3:
		precision = FpaExtended
	}

	immediate := info&0x4 != 0

	if opcode&0x8 == 0 {
		return Instruction{
			Class: FpaDyadic,
			Cond:  cond,
			Params: FpaDyadicParams{
				Opcode:    opcode,
				Precision: precision,
				Fd:        crd,
				Fn:        crn,
				Fm:        crm,
				Immediate: immediate,
			},
		}, true
	}

	return Instruction{
		Class: FpaMonadic,
		Cond:  cond,
		Params: FpaMonadicParams{
			Opcode:    opcode,
			Precision: precision,
			Fd:        crd,
			Fm:        crm,
			Immediate: immediate,
		},
	}, true
}

func decodeCoProcRegisterTransfer(word uint32, cond ConditionCode, flags options.DecodeFlags) (Instruction, bool) {
	cp := uint8((word >> 8) & 0xF)
	opcode := uint8((word >> 21) & 0x7)
	crn := uint8((word >> 16) & 0xF)
	rd := uint8((word >> 12) & 0xF)
	crm := uint8(word & 0xF)
	info := uint8((word >> 5) & 0x7)
	load := word&0x00100000 != 0

	if flags.AllowFPA && isFpaCoProc(cp) {
		return decodeFpaRegisterTransfer(opcode, crn, rd, crm, load, cond)
	}

	return Instruction{
		Class: CoProcRegisterTransfer,
		Cond:  cond,
		Params: CoProcRegisterTransferParams{
			Load:   load,
			CoProc: cp,
			Opcode: opcode,
			CRn:    crn,
			Rd:     rd,
			CRm:    crm,
			Info:   info,
		},
	}, true
}

// decodeFpaRegisterTransfer covers WFS/RFS/WFC/RFC (opcode 0, with
// CRn 0 selecting the status word and CRn 1 the control word) and
// FLT/FIX (every other transfer, CRn carrying the FPA register).
func decodeFpaRegisterTransfer(opcode, crn, rd, crm uint8, load bool, cond ConditionCode) (Instruction, bool) {
	_ = crm

	if opcode == 0x0 {
		switch crn {
		case 0:
			return Instruction{
				Class:  FpaStatusTransfer,
				Cond:   cond,
				Params: FpaStatusTransferParams{Write: !load, ControlW: false, Rd: rd},
			}, true
		case 1:
			return Instruction{
				Class:  FpaStatusTransfer,
				Cond:   cond,
				Params: FpaStatusTransferParams{Write: !load, ControlW: true, Rd: rd},
			}, true
		}
	}

	return Instruction{
		Class: FpaRegisterTransfer,
		Cond:  cond,
		Params: FpaRegisterTransferParams{
			ToFpa: !load,
			Rd:    rd,
			Fn:    crn,
		},
	}, true
}

// FoldAdr attempts to recognise a PC-relative ADD/SUB sequence
// beginning at instructions[0] as an ADR pseudo-instruction, looking
// ahead up to two further words when the immediate does not fit a
// single instruction. It returns the folded instruction and the
// number of words consumed (1-3), or ok=false if instructions[0] is
// not a candidate.
func FoldAdr(instructions []Instruction, addr uint32) (inst Instruction, consumed int, ok bool) {
	first, isAdd, rd, imm, ok0 := adrCandidate(instructions[0], addr)
	if !ok0 {
		return Instruction{}, 0, false
	}

	_ = first
	target := addr + 8 + imm
	if !isAdd {
		target = addr + 8 - imm
	}

	encoding := AdrSingle
	consumed = 1

	for i := 1; i < len(instructions) && i < 3; i++ {
		nextAdd, nextRd, nextImm, chainOk := adrChainCandidate(instructions[i], rd)
		if !chainOk {
			break
		}

		if nextAdd {
			target += nextImm
		} else {
			target -= nextImm
		}

		rd = nextRd
		consumed++

		if consumed == 2 {
			encoding = AdrLong
		} else {
			encoding = AdrExtended
		}
	}

	return Instruction{
		Class: CoreAddress,
		Cond:  instructions[0].Cond,
		Params: CoreAddressParams{
			Rd:       rd,
			Target:   target,
			Encoding: encoding,
		},
	}, consumed, true
}

func adrCandidate(inst Instruction, addr uint32) (Instruction, bool, uint8, uint32, bool) {
	_ = addr

	alu, ok := inst.Params.(CoreAluParams)
	if !ok {
		return Instruction{}, false, 0, 0, false
	}

	if alu.Rn != 15 || alu.Shifter.Mode != ImmediateConstant {
		return Instruction{}, false, 0, 0, false
	}

	switch alu.Op {
	case OpADD:
		return inst, true, alu.Rd, alu.Shifter.Immediate, true
	case OpSUB:
		return inst, false, alu.Rd, alu.Shifter.Immediate, true
	default:
		return Instruction{}, false, 0, 0, false
	}
}

func adrChainCandidate(inst Instruction, rd uint8) (bool, uint8, uint32, bool) {
	alu, ok := inst.Params.(CoreAluParams)
	if !ok {
		return false, 0, 0, false
	}

	if alu.Rn != rd || alu.Shifter.Mode != ImmediateConstant {
		return false, 0, 0, false
	}

	switch alu.Op {
	case OpADD:
		return true, alu.Rd, alu.Shifter.Immediate, true
	case OpSUB:
		return false, alu.Rd, alu.Shifter.Immediate, true
	default:
		return false, 0, 0, false
	}
}

var errUnrepresentable = fmt.Errorf("operand not representable in this encoding")

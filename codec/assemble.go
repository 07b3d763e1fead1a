package codec

import "fmt"

// Assemble encodes an Instruction descriptor back into its 32-bit
// machine word. addr is the address the instruction will be placed
// at, needed to re-derive the PC-relative branch/ADR displacement.
// Assemble inverts Disassemble for canonical encodings: fields that
// Disassemble does not keep (for example the opcode, CRm and info
// fields of an FPA register transfer, or the Rd field of
// TST/TEQ/CMP/CMN) are
// assembled as zero, so Assemble(Disassemble(w, addr, f), addr) == w
// only when those bits of w were zero.
func Assemble(inst Instruction, addr uint32) (uint32, error) {
	cond := uint32(inst.Cond) << 28

	switch p := inst.Params.(type) {
	case NoneParams:
		return p.RawWord, nil
	case CoreAluParams:
		return assembleCoreAlu(p, cond)
	case CoreCompareParams:
		return assembleCoreCompare(p, cond)
	case CoreAddressParams:
		return 0, fmt.Errorf("codec: ADR must be re-expanded to CoreAlu words before assembly")
	case CoreMultiplyParams:
		return assembleMultiply(p, cond)
	case LongMultiplyParams:
		return assembleLongMultiply(p, cond)
	case CoreDataTransferParams:
		return assembleDataTransfer(p, cond)
	case CoreMultiTransferParams:
		return assembleBlockTransfer(p, cond)
	case BranchParams:
		return assembleBranch(p, cond, addr)
	case SoftwareIrqParams:
		return cond | 0x0F000000 | (p.Comment & 0x00FFFFFF), nil
	case BreakpointParams:
		return assembleBreakpoint(p, cond)
	case AtomicSwapParams:
		return assembleSwap(p, cond)
	case MoveFromPSRParams:
		return assembleMRS(p, cond)
	case MoveToPSRParams:
		return assembleMSR(p, cond)
	case BranchExchangeParams:
		return cond | 0x012FFF10 | uint32(p.Rm), nil
	case CoProcDataProcessingParams:
		return assembleCoProcDataProcessing(p, cond)
	case CoProcRegisterTransferParams:
		return assembleCoProcRegisterTransfer(p, cond)
	case CoProcDataTransferParams:
		return assembleCoProcDataTransfer(p, cond)
	case FpaDataTransferParams:
		return assembleFpaDataTransfer(p, cond)
	case FpaDyadicParams:
		return assembleFpaDyadic(p, cond)
	case FpaMonadicParams:
		return assembleFpaMonadic(p, cond)
	case FpaRegisterTransferParams:
		return assembleFpaRegisterTransfer(p, cond)
	case FpaComparisonParams:
		return assembleFpaComparison(p, cond)
	case FpaStatusTransferParams:
		return assembleFpaStatusTransfer(p, cond)
	default:
		return 0, fmt.Errorf("codec: unrecognised operand type %T", inst.Params)
	}
}

func assembleShifterOperand(s ShifterOperand) (uint32, error) {
	switch s.Mode {
	case ImmediateConstant:
		rotate, imm8, err := EncodeImmediateConstant(s.Immediate)
		if err != nil {
			return 0, err
		}

		return 0x02000000 | uint32(rotate)<<8 | uint32(imm8), nil
	case ShiftByRegister:
		return uint32(s.Rs)<<8 | uint32(shiftTypeField(s.ShiftType))<<5 | 0x10 | uint32(s.Rm), nil
	case ShiftByConstant, Register:
		imm := s.Immediate
		if s.ShiftType == LSR || s.ShiftType == ASR {
			if imm == 32 {
				imm = 0
			}
		}

		return imm<<7 | uint32(shiftTypeField(s.ShiftType))<<5 | uint32(s.Rm), nil
	case RotateWithExtend:
		return uint32(shiftTypeField(ROR))<<5 | uint32(s.Rm), nil
	default:
		return 0, errUnrepresentable
	}
}

func shiftTypeField(t ShiftType) uint8 {
	switch t {
	case LSL, ShiftNone:
		return 0
	case LSR:
		return 1
	case ASR:
		return 2
	case ROR, RRX:
		return 3
	default:
		return 0
	}
}

func assembleCoreAlu(p CoreAluParams, cond uint32) (uint32, error) {
	shifterBits, err := assembleShifterOperand(p.Shifter)
	if err != nil {
		return 0, err
	}

	word := cond | uint32(p.Op)<<21 | boolBit(p.S, 20) | uint32(p.Rn)<<16 | uint32(p.Rd)<<12 | shifterBits

	return word, nil
}

func assembleCoreCompare(p CoreCompareParams, cond uint32) (uint32, error) {
	shifterBits, err := assembleShifterOperand(p.Shifter)
	if err != nil {
		return 0, err
	}

	return cond | uint32(p.Op)<<21 | 1<<20 | uint32(p.Rn)<<16 | shifterBits, nil
}

func assembleMultiply(p CoreMultiplyParams, cond uint32) (uint32, error) {
	word := cond | 0x00000090 | boolBit(p.Accumulate, 21) | boolBit(p.S, 20) |
		uint32(p.Rd)<<16 | uint32(p.Rn)<<12 | uint32(p.Rs)<<8 | uint32(p.Rm)

	return word, nil
}

func assembleLongMultiply(p LongMultiplyParams, cond uint32) (uint32, error) {
	word := cond | 0x00800090 | boolBit(p.Signed, 22) | boolBit(p.Accumulate, 21) | boolBit(p.S, 20) |
		uint32(p.RdHi)<<16 | uint32(p.RdLo)<<12 | uint32(p.Rs)<<8 | uint32(p.Rm)

	return word, nil
}

func assembleSwap(p AtomicSwapParams, cond uint32) (uint32, error) {
	word := cond | 0x01000090 | boolBit(p.Byte, 22) | uint32(p.Rn)<<16 | uint32(p.Rd)<<12 | uint32(p.Rm)

	return word, nil
}

func assembleMRS(p MoveFromPSRParams, cond uint32) (uint32, error) {
	return cond | 0x010F0000 | boolBit(p.SPSR, 22) | uint32(p.Rd)<<12, nil
}

func assembleMSR(p MoveToPSRParams, cond uint32) (uint32, error) {
	word := cond | 0x0120F000 | boolBit(p.SPSR, 22)

	if !p.FlagsOnly {
		word |= 1 << 16
	}

	if p.Immediate {
		rotate, imm8, err := EncodeImmediateConstant(p.RotateImm8)
		if err != nil {
			return 0, err
		}

		return word | 0x02000000 | uint32(rotate)<<8 | uint32(imm8), nil
	}

	return word | uint32(p.Rm), nil
}

func assembleAddress(a AddressOperand) uint32 {
	base := uint32(a.Rn) << 16

	if a.Flags.Has(PreIndexed) {
		base |= 0x01000000
	}

	if !a.Flags.Has(NegativeOffset) {
		base |= 0x00800000
	}

	if a.Flags.Has(Writeback) {
		base |= 0x00200000
	}

	return base
}

func assembleDataTransfer(p CoreDataTransferParams, cond uint32) (uint32, error) {
	base := assembleAddress(p.Address)

	switch p.Size {
	case TransferByte:
		word := cond | 0x04000000 | base | 0x00400000 | boolBit(p.Load, 20) |
			uint32(p.Rd)<<12
		offsetBits, err := singleTransferOffset(p.Address.Offset)
		if err != nil {
			return 0, err
		}

		return word | offsetBits, nil
	case TransferWord:
		word := cond | 0x04000000 | base | boolBit(p.Load, 20) | uint32(p.Rd)<<12
		offsetBits, err := singleTransferOffset(p.Address.Offset)
		if err != nil {
			return 0, err
		}

		return word | offsetBits, nil
	case TransferHalfWord, TransferSignedByte, TransferSignedHalfWord:
		return assembleHalfwordTransfer(p, cond, base)
	default:
		return 0, fmt.Errorf("codec: unknown transfer size %d", p.Size)
	}
}

func singleTransferOffset(s ShifterOperand) (uint32, error) {
	switch s.Mode {
	case ImmediateConstant:
		if s.Immediate > 0xFFF {
			return 0, fmt.Errorf("codec: data transfer offset %#x exceeds 12 bits", s.Immediate)
		}

		return s.Immediate, nil
	case ShiftByConstant, Register, RotateWithExtend:
		shifterBits, err := assembleShifterOperand(s)
		if err != nil {
			return 0, err
		}

		return 0x02000000 | shifterBits, nil
	default:
		return 0, errUnrepresentable
	}
}

func assembleHalfwordTransfer(p CoreDataTransferParams, cond uint32, base uint32) (uint32, error) {
	word := cond | 0x00000090 | base | boolBit(p.Load, 20) | uint32(p.Rd)<<12

	switch p.Size {
	case TransferHalfWord:
		word |= 0x20
	case TransferSignedByte:
		word |= 0x40
	case TransferSignedHalfWord:
		word |= 0x60
	}

	switch p.Address.Offset.Mode {
	case ImmediateConstant:
		word |= 0x00400000
		imm := p.Address.Offset.Immediate
		word |= (imm & 0xF0) << 4
		word |= imm & 0xF
	case Register:
		word |= uint32(p.Address.Offset.Rm)
	default:
		return 0, errUnrepresentable
	}

	return word, nil
}

func assembleBlockTransfer(p CoreMultiTransferParams, cond uint32) (uint32, error) {
	word := cond | 0x08000000 | boolBit(p.Load, 20) | boolBit(p.Writeback, 21) |
		boolBit(p.UserBank, 22) | uint32(p.Rn)<<16 | uint32(p.RegList)

	switch p.Mode {
	case IA:
		word |= 0x00800000
	case IB:
		word |= 0x01800000
	case DA:
	case DB:
		word |= 0x01000000
	}

	return word, nil
}

const branchRange = 1 << 25

func assembleBranch(p BranchParams, cond uint32, addr uint32) (uint32, error) {
	displacement := int64(p.Target) - int64(addr) - 8
	if displacement >= branchRange || displacement < -branchRange {
		return 0, fmt.Errorf("codec: branch target %#x out of range from %#x", p.Target, addr)
	}

	if displacement&0x3 != 0 {
		return 0, fmt.Errorf("codec: branch target %#x is not word-aligned", p.Target)
	}

	offset := uint32(displacement/4) & 0x00FFFFFF
	word := cond | 0x0A000000 | boolBit(p.Link, 24) | offset

	return word, nil
}

func assembleBreakpoint(p BreakpointParams, cond uint32) (uint32, error) {
	word := cond | 0x01200070 | (uint32(p.Comment)&0xFFF0)<<4 | uint32(p.Comment)&0xF

	return word, nil
}

func assembleCoProcDataProcessing(p CoProcDataProcessingParams, cond uint32) (uint32, error) {
	word := cond | 0x0E000000 | uint32(p.Opcode)<<20 | uint32(p.CRn)<<16 |
		uint32(p.CRd)<<12 | uint32(p.CoProc)<<8 | uint32(p.Info)<<5 | uint32(p.CRm)

	return word, nil
}

func assembleCoProcRegisterTransfer(p CoProcRegisterTransferParams, cond uint32) (uint32, error) {
	word := cond | 0x0E000010 | uint32(p.Opcode)<<21 | boolBit(p.Load, 20) |
		uint32(p.CRn)<<16 | uint32(p.Rd)<<12 | uint32(p.CoProc)<<8 | uint32(p.Info)<<5 | uint32(p.CRm)

	return word, nil
}

func assembleCoProcDataTransfer(p CoProcDataTransferParams, cond uint32) (uint32, error) {
	base := assembleAddress(p.Address)

	if p.Address.Offset.Mode != ImmediateConstant {
		return 0, errUnrepresentable
	}

	if p.Address.Offset.Immediate&0x3 != 0 || p.Address.Offset.Immediate > 0x3FC {
		return 0, fmt.Errorf("codec: coprocessor transfer offset %#x must be a word-aligned 8-bit*4 value", p.Address.Offset.Immediate)
	}

	word := cond | 0x0C000000 | base | boolBit(p.Load, 20) | boolBit(p.Long, 22) |
		uint32(p.CoProc)<<8 | uint32(p.CRd)<<12 | (p.Address.Offset.Immediate >> 2)

	return word, nil
}

func assembleFpaDataTransfer(p FpaDataTransferParams, cond uint32) (uint32, error) {
	cp := uint8(1)

	dtp := CoProcDataTransferParams{
		Load:    p.Load,
		Long:    p.Precision == FpaExtended,
		CoProc:  cp,
		CRd:     p.Fd,
		Address: p.Address,
	}

	return assembleCoProcDataTransfer(dtp, cond)
}

func assembleFpaDyadic(p FpaDyadicParams, cond uint32) (uint32, error) {
	info := fpaPrecisionInfo(p.Precision, p.Immediate)

	cdp := CoProcDataProcessingParams{
		CoProc: 1,
		Opcode: p.Opcode & 0x7,
		CRd:    p.Fd,
		CRn:    p.Fn,
		CRm:    p.Fm,
		Info:   info,
	}

	return assembleCoProcDataProcessing(cdp, cond)
}

func assembleFpaMonadic(p FpaMonadicParams, cond uint32) (uint32, error) {
	info := fpaPrecisionInfo(p.Precision, p.Immediate)

	cdp := CoProcDataProcessingParams{
		CoProc: 1,
		Opcode: 0x8 | (p.Opcode & 0x7),
		CRd:    p.Fd,
		CRn:    0,
		CRm:    p.Fm,
		Info:   info,
	}

	return assembleCoProcDataProcessing(cdp, cond)
}

func fpaPrecisionInfo(precision FpaPrecision, immediate bool) uint8 {
	var info uint8

	switch precision {
	case FpaDouble:
		info = 1
	case FpaExtended:
		info = 2
	}

	if immediate {
		info |= 0x4
	}

	return info
}

func assembleFpaRegisterTransfer(p FpaRegisterTransferParams, cond uint32) (uint32, error) {
	crt := CoProcRegisterTransferParams{
		Load:   !p.ToFpa,
		CoProc: 1,
		Opcode: 0,
		CRn:    p.Fn,
		Rd:     p.Rd,
		CRm:    0,
	}

	return assembleCoProcRegisterTransfer(crt, cond)
}

func assembleFpaComparison(p FpaComparisonParams, cond uint32) (uint32, error) {
	opcode := uint8(4)
	if p.Negated {
		opcode = 5
	}

	info := uint8(0)
	if p.Immediate {
		info |= 0x4
	}

	crt := CoProcRegisterTransferParams{
		Load:   false,
		CoProc: 1,
		Opcode: opcode,
		CRn:    p.Fn,
		Rd:     15,
		CRm:    p.Fm,
		Info:   info,
	}

	return assembleCoProcRegisterTransfer(crt, cond)
}

func assembleFpaStatusTransfer(p FpaStatusTransferParams, cond uint32) (uint32, error) {
	crn := uint8(0)
	if p.ControlW {
		crn = 1
	}

	crt := CoProcRegisterTransferParams{
		Load:   !p.Write,
		CoProc: 1,
		Opcode: 0,
		CRn:    crn,
		Rd:     p.Rd,
		CRm:    0,
	}

	return assembleCoProcRegisterTransfer(crt, cond)
}

func boolBit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}

	return 0
}

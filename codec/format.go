package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/archemu/options"
)

// Format renders inst as both a flat assembler-syntax string and its
// constituent Token stream, in the style selected by opts.
func Format(inst Instruction, opts options.FormatterOptions) (string, []options.Token) {
	var b formatBuilder
	b.opts = opts

	b.mnemonic(inst)
	b.emit(options.TokenSeparator, " ")
	b.writeParams(inst)

	return b.text(), b.tokens
}

type formatBuilder struct {
	opts    options.FormatterOptions
	tokens  []options.Token
	builder strings.Builder
}

func (b *formatBuilder) emit(kind options.TokenKind, text string) {
	b.tokens = append(b.tokens, options.Token{Kind: kind, Text: text})
	b.builder.WriteString(text)
}

func (b *formatBuilder) emitData(kind options.TokenKind, text string, data uint32) {
	b.tokens = append(b.tokens, options.Token{Kind: kind, Text: text, Data: data})
	b.builder.WriteString(text)
}

func (b *formatBuilder) text() string {
	return b.builder.String()
}

func (b *formatBuilder) mnemonic(inst Instruction) {
	name := inst.Mnemonic
	if name == "" {
		name = defaultMnemonic(inst)
	}

	kind := options.TokenCoreMnemonic

	switch inst.Class {
	case CoProcDataProcessing, CoProcRegisterTransfer, CoProcDataTransfer:
		kind = options.TokenCoProcMnemonic
	case FpaDataTransfer, FpaDyadic, FpaMonadic, FpaRegisterTransfer, FpaComparison, FpaStatusTransfer:
		kind = options.TokenFpaMnemonic
	case None:
		kind = options.TokenDataDirectiveMnemonic
	}

	b.emit(kind, name+inst.Cond.String()+sFlagSuffix(inst.Params))
}

func sFlagSuffix(p Operands) string {
	switch v := p.(type) {
	case CoreAluParams:
		if v.S {
			return "S"
		}
	case CoreMultiplyParams:
		if v.S {
			return "S"
		}
	case LongMultiplyParams:
		if v.S {
			return "S"
		}
	}

	return ""
}

func defaultMnemonic(inst Instruction) string {
	switch p := inst.Params.(type) {
	case CoreAluParams:
		return p.Op.String()
	case CoreCompareParams:
		return p.Op.String()
	case CoreAddressParams:
		return "ADR"
	case CoreMultiplyParams:
		if p.Accumulate {
			return "MLA"
		}

		return "MUL"
	case LongMultiplyParams:
		return longMultiplyMnemonic(p)
	case CoreDataTransferParams:
		return dataTransferMnemonic(p)
	case CoreMultiTransferParams:
		return multiTransferMnemonic(p)
	case BranchParams:
		if p.Link {
			return "BL"
		}

		return "B"
	case SoftwareIrqParams:
		return "SWI"
	case BreakpointParams:
		return "BKPT"
	case AtomicSwapParams:
		if p.Byte {
			return "SWPB"
		}

		return "SWP"
	case MoveFromPSRParams:
		return "MRS"
	case MoveToPSRParams:
		return "MSR"
	case BranchExchangeParams:
		if p.Link {
			return "BLX"
		}

		return "BX"
	case CoProcDataProcessingParams:
		return "CDP"
	case CoProcRegisterTransferParams:
		if p.Load {
			return "MRC"
		}

		return "MCR"
	case CoProcDataTransferParams:
		return coProcDataTransferMnemonic(p)
	case FpaDataTransferParams:
		if p.Load {
			return "LDF"
		}

		return "STF"
	case FpaRegisterTransferParams:
		if p.ToFpa {
			return "FLT"
		}

		return "FIX"
	case FpaComparisonParams:
		if p.Negated {
			return "CNF"
		}

		return "CMF"
	case FpaStatusTransferParams:
		return fpaStatusMnemonic(p)
	case NoneParams:
		return "EQUD"
	default:
		return "?"
	}
}

func longMultiplyMnemonic(p LongMultiplyParams) string {
	sign := "U"
	if p.Signed {
		sign = "S"
	}

	op := "MULL"
	if p.Accumulate {
		op = "MLAL"
	}

	return sign + op
}

func dataTransferMnemonic(p CoreDataTransferParams) string {
	base := "STR"
	if p.Load {
		base = "LDR"
	}

	switch p.Size {
	case TransferByte:
		return base + "B"
	case TransferHalfWord:
		return base + "H"
	case TransferSignedByte:
		return base + "SB"
	case TransferSignedHalfWord:
		return base + "SH"
	default:
		return base
	}
}

func multiTransferMnemonic(p CoreMultiTransferParams) string {
	if p.Load {
		return "LDM"
	}

	return "STM"
}

func coProcDataTransferMnemonic(p CoProcDataTransferParams) string {
	if p.Load {
		return "LDC"
	}

	return "STC"
}

func fpaStatusMnemonic(p FpaStatusTransferParams) string {
	switch {
	case p.Write && !p.ControlW:
		return "WFS"
	case !p.Write && !p.ControlW:
		return "RFS"
	case p.Write && p.ControlW:
		return "WFC"
	default:
		return "RFC"
	}
}

func (b *formatBuilder) writeParams(inst Instruction) {
	switch p := inst.Params.(type) {
	case CoreAluParams:
		b.coreRegList(p.Rd)
		b.sep()
		b.coreRegList(p.Rn)
		b.sep()
		b.shifterOperand(p.Shifter)
	case CoreCompareParams:
		b.coreRegList(p.Rn)
		b.sep()
		b.shifterOperand(p.Shifter)
	case CoreAddressParams:
		b.coreRegList(p.Rd)
		b.sep()
		b.address(p.Target)
	case CoreMultiplyParams:
		b.multiplyOperands(p)
	case LongMultiplyParams:
		b.longMultiplyOperands(p)
	case CoreDataTransferParams:
		b.coreRegList(p.Rd)
		b.sep()
		b.addressOperand(p.Address)
	case CoreMultiTransferParams:
		b.blockTransferOperands(p)
	case BranchParams:
		b.address(p.Target)
	case SoftwareIrqParams:
		b.swiComment(p.Comment)
	case BreakpointParams:
		b.immediate(uint32(p.Comment))
	case AtomicSwapParams:
		b.coreRegList(p.Rd)
		b.sep()
		b.coreRegList(p.Rm)
		b.sep()
		b.emit(options.TokenBeginAddrOperand, "[")
		b.coreRegList(p.Rn)
		b.emit(options.TokenEndAddrOperand, "]")
	case MoveFromPSRParams:
		b.coreRegList(p.Rd)
		b.sep()
		b.psrName(p.SPSR)
	case MoveToPSRParams:
		b.msrOperands(p)
	case BranchExchangeParams:
		b.coreRegList(p.Rm)
	case CoProcDataProcessingParams:
		b.cdpOperands(p)
	case CoProcRegisterTransferParams:
		b.mrcMcrOperands(p)
	case CoProcDataTransferParams:
		b.coProcID(p.CoProc)
		b.sep()
		b.coProcRegister(p.CRd)
		b.sep()
		b.addressOperand(p.Address)
	case FpaDataTransferParams:
		b.fpaRegister(p.Fd)
		b.sep()
		b.addressOperand(p.Address)
	case FpaDyadicParams:
		b.fpaDyadicOperands(p)
	case FpaMonadicParams:
		b.fpaMonadicOperands(p)
	case FpaRegisterTransferParams:
		b.fpaRegisterTransferOperands(p)
	case FpaComparisonParams:
		b.fpaComparisonOperands(p)
	case FpaStatusTransferParams:
		b.coreRegList(p.Rd)
	case NoneParams:
		b.emitData(options.TokenDataValue, fmt.Sprintf("&%08X", p.RawWord), p.RawWord)
	}
}

func (b *formatBuilder) sep() {
	b.emit(options.TokenSeparator, ", ")
}

func (b *formatBuilder) coreRegList(r uint8) {
	b.emit(options.TokenCoreRegister, coreRegisterName(r, b.opts.Flags))
}

func coreRegisterName(r uint8, flags options.FormatFlags) string {
	if flags.Has(options.UseAPCSRegAliases) {
		names := [...]string{"a1", "a2", "a3", "a4", "v1", "v2", "v3", "v4",
			"v5", "v6", "sl", "fp", "ip", "sp", "lr", "pc"}
		if int(r) < len(names) {
			return names[r]
		}
	}

	if flags.Has(options.UseCoreRegAliases) {
		switch r {
		case 13:
			return "sp"
		case 14:
			return "lr"
		case 15:
			return "pc"
		}
	}

	return "R" + strconv.Itoa(int(r))
}

func (b *formatBuilder) coProcID(cp uint8) {
	b.emit(options.TokenCoProcessorID, "p"+strconv.Itoa(int(cp)))
}

func (b *formatBuilder) coProcRegister(cr uint8) {
	b.emit(options.TokenCoProcessorRegister, "c"+strconv.Itoa(int(cr)))
}

func (b *formatBuilder) fpaRegister(f uint8) {
	b.emit(options.TokenFpaRegister, "f"+strconv.Itoa(int(f)))
}

func (b *formatBuilder) immediate(v uint32) {
	text := b.renderImmediate(v, b.opts.Flags.Has(options.UseDecimalImmediates))
	b.emitData(options.TokenImmediateConstant, "#"+text, v)
}

func (b *formatBuilder) renderImmediate(v uint32, decimal bool) string {
	if decimal {
		return strconv.FormatUint(uint64(v), 10)
	}

	if b.opts.Flags.Has(options.UseBasicStyleHex) {
		return fmt.Sprintf("&%X", v)
	}

	return fmt.Sprintf("0x%X", v)
}

func (b *formatBuilder) address(target uint32) {
	var buf string
	if b.opts.AppendAddressSymbol != nil && b.opts.AppendAddressSymbol(target, &buf) {
		b.emitData(options.TokenLabel, buf, target)

		return
	}

	rendered := b.renderImmediate(target, b.opts.Flags.Has(options.UseDecimalOffsets))
	b.emitData(options.TokenLabel, rendered, target)
}

func (b *formatBuilder) swiComment(v uint32) {
	var buf string
	if b.opts.AppendSWIComment != nil && b.opts.AppendSWIComment(v, &buf) {
		b.emitData(options.TokenImmediateConstant, buf, v)

		return
	}

	b.immediate(v)
}

func (b *formatBuilder) psrName(spsr bool) {
	name := "CPSR"
	if spsr {
		name = "SPSR"
	}

	b.emit(options.TokenModifyPsrMarker, name)
}

func (b *formatBuilder) shifterOperand(s ShifterOperand) {
	switch s.Mode {
	case ImmediateConstant:
		b.immediate(s.Immediate)
	case Register:
		b.coreRegList(s.Rm)
	case ShiftByConstant:
		b.coreRegList(s.Rm)

		if s.ShiftType == ShiftNone {
			break
		}

		b.sep()
		b.emit(options.TokenShift, shiftMnemonic(s.ShiftType))
		b.emit(options.TokenSeparator, " ")
		b.emitData(options.TokenImmediateConstant, "#"+strconv.FormatUint(uint64(s.Immediate), 10), s.Immediate)
	case ShiftByRegister:
		b.coreRegList(s.Rm)
		b.sep()
		b.emit(options.TokenShift, shiftMnemonic(s.ShiftType))
		b.emit(options.TokenSeparator, " ")
		b.coreRegList(s.Rs)
	case RotateWithExtend:
		b.coreRegList(s.Rm)
		b.sep()
		b.emit(options.TokenShift, "RRX")
	}
}

func shiftMnemonic(t ShiftType) string {
	switch t {
	case LSL:
		return "LSL"
	case LSR:
		return "LSR"
	case ASR:
		return "ASR"
	case ROR:
		return "ROR"
	case RRX:
		return "RRX"
	default:
		return "LSL"
	}
}

func (b *formatBuilder) addressOperand(a AddressOperand) {
	b.emit(options.TokenBeginAddrOperand, "[")
	b.coreRegList(a.Rn)

	isZeroOffset := a.Offset.Mode == ImmediateConstant && a.Offset.Immediate == 0

	if !isZeroOffset {
		b.sep()

		if a.Flags.Has(NegativeOffset) {
			b.emit(options.TokenSeparator, "-")
		}

		b.shifterOperand(a.Offset)
	}

	if a.Flags.Has(PreIndexed) {
		b.emit(options.TokenEndAddrOperand, "]")

		if a.Flags.Has(Writeback) {
			b.emit(options.TokenWritebackMarker, "!")
		}
	} else {
		b.emit(options.TokenEndAddrOperand, "]")
	}
}

func (b *formatBuilder) multiplyOperands(p CoreMultiplyParams) {
	b.coreRegList(p.Rd)
	b.sep()
	b.coreRegList(p.Rm)
	b.sep()
	b.coreRegList(p.Rs)

	if p.Accumulate {
		b.sep()
		b.coreRegList(p.Rn)
	}
}

func (b *formatBuilder) longMultiplyOperands(p LongMultiplyParams) {
	b.coreRegList(p.RdLo)
	b.sep()
	b.coreRegList(p.RdHi)
	b.sep()
	b.coreRegList(p.Rm)
	b.sep()
	b.coreRegList(p.Rs)
}

func (b *formatBuilder) blockTransferOperands(p CoreMultiTransferParams) {
	b.coreRegList(p.Rn)

	if p.Writeback {
		b.emit(options.TokenWritebackMarker, "!")
	}

	b.sep()
	b.emit(options.TokenBeginAddrOperand, "{")

	first := true

	for r := uint8(0); r < 16; r++ {
		if p.RegList&(1<<r) == 0 {
			continue
		}

		if !first {
			b.emit(options.TokenSeparator, ", ")
		}

		b.coreRegList(r)

		first = false
	}

	b.emit(options.TokenEndAddrOperand, "}")

	if p.UserBank {
		b.emit(options.TokenModifyPsrMarker, "^")
	}
}

func (b *formatBuilder) msrOperands(p MoveToPSRParams) {
	name := "CPSR"
	if p.SPSR {
		name = "SPSR"
	}

	if p.FlagsOnly {
		name += "_flg"
	}

	b.emit(options.TokenModifyPsrMarker, name)
	b.sep()

	if p.Immediate {
		b.immediate(p.RotateImm8)
	} else {
		b.coreRegList(p.Rm)
	}
}

func (b *formatBuilder) cdpOperands(p CoProcDataProcessingParams) {
	b.coProcID(p.CoProc)
	b.sep()
	b.immediate(uint32(p.Opcode))
	b.sep()
	b.coProcRegister(p.CRd)
	b.sep()
	b.coProcRegister(p.CRn)
	b.sep()
	b.coProcRegister(p.CRm)

	if p.Info != 0 {
		b.sep()
		b.immediate(uint32(p.Info))
	}
}

func (b *formatBuilder) mrcMcrOperands(p CoProcRegisterTransferParams) {
	b.coProcID(p.CoProc)
	b.sep()
	b.immediate(uint32(p.Opcode))
	b.sep()
	b.coreRegList(p.Rd)
	b.sep()
	b.coProcRegister(p.CRn)
	b.sep()
	b.coProcRegister(p.CRm)

	if p.Info != 0 {
		b.sep()
		b.immediate(uint32(p.Info))
	}
}

func (b *formatBuilder) fpaDyadicOperands(p FpaDyadicParams) {
	b.fpaRegister(p.Fd)
	b.sep()
	b.fpaRegister(p.Fn)
	b.sep()

	if p.Immediate {
		b.immediate(uint32(p.Fm))
	} else {
		b.fpaRegister(p.Fm)
	}
}

func (b *formatBuilder) fpaMonadicOperands(p FpaMonadicParams) {
	b.fpaRegister(p.Fd)
	b.sep()

	if p.Immediate {
		b.immediate(uint32(p.Fm))
	} else {
		b.fpaRegister(p.Fm)
	}
}

func (b *formatBuilder) fpaRegisterTransferOperands(p FpaRegisterTransferParams) {
	b.coreRegList(p.Rd)
	b.sep()
	b.fpaRegister(p.Fn)
}

func (b *formatBuilder) fpaComparisonOperands(p FpaComparisonParams) {
	b.fpaRegister(p.Fn)
	b.sep()

	if p.Immediate {
		b.immediate(uint32(p.Fm))
	} else {
		b.fpaRegister(p.Fm)
	}
}

package codec

// AluOp identifies the core data-processing operation.
type AluOp uint8

const (
	OpAND AluOp = iota
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpTST
	OpTEQ
	OpCMP
	OpCMN
	OpORR
	OpMOV
	OpBIC
	OpMVN
)

func (op AluOp) String() string {
	names := [...]string{"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
		"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN"}
	if int(op) < len(names) {
		return names[op]
	}

	return "?"
}

// IsCompareOnly reports whether op is one of TST/TEQ/CMP/CMN, which
// never write Rd and always set flags.
func (op AluOp) IsCompareOnly() bool {
	return op == OpTST || op == OpTEQ || op == OpCMP || op == OpCMN
}

// CoreAluParams covers CoreAlu (general data processing). CoreCompare
// (TST/TEQ/CMP/CMN, which carry no Rd and always set flags) uses its
// own CoreCompareParams record, mirroring the encoding's own
// opcode-group split.
type CoreAluParams struct {
	Op      AluOp
	S       bool // update flags
	Rd      uint8
	Rn      uint8
	Shifter ShifterOperand
}

func (CoreAluParams) operationClass() OperationClass { return CoreAlu }

// CoreCompareParams is the TST/TEQ/CMP/CMN parameter record: no Rd, S
// is implicitly true (the P bit in bits 20 reused as "use SPSR" only
// matters for the deprecated MRS-alias encoding, handled separately).
type CoreCompareParams struct {
	Op      AluOp
	Rn      uint8
	Shifter ShifterOperand
}

func (CoreCompareParams) operationClass() OperationClass { return CoreCompare }

// AdrEncoding identifies how many machine words an ADR pseudo
// instruction occupies.
type AdrEncoding uint8

const (
	AdrSingle AdrEncoding = iota
	AdrLong
	AdrExtended
)

// CoreAddressParams is the ADR pseudo-instruction: an absolute target
// address folded from one, two, or three ADD/SUB-from-PC words.
type CoreAddressParams struct {
	Rd       uint8
	Target   uint32
	Encoding AdrEncoding
}

func (CoreAddressParams) operationClass() OperationClass { return CoreAddress }

// CoreMultiplyParams covers MUL/MLA.
type CoreMultiplyParams struct {
	Accumulate bool // MLA
	S          bool
	Rd         uint8
	Rn         uint8 // accumulator, MLA only
	Rs         uint8
	Rm         uint8
}

func (CoreMultiplyParams) operationClass() OperationClass { return CoreMultiply }

// LongMultiplyParams covers UMULL/UMLAL/SMULL/SMLAL (ARMv4+).
type LongMultiplyParams struct {
	Signed     bool
	Accumulate bool
	S          bool
	RdHi       uint8
	RdLo       uint8
	Rs         uint8
	Rm         uint8
}

func (LongMultiplyParams) operationClass() OperationClass { return LongMultiply }

// TransferSize identifies a single-register data-transfer width.
type TransferSize uint8

const (
	TransferWord TransferSize = iota
	TransferByte
	TransferHalfWord
	TransferSignedByte
	TransferSignedHalfWord
)

// CoreDataTransferParams covers LDR/STR and their B/H/SB/SH variants.
type CoreDataTransferParams struct {
	Load    bool
	Size    TransferSize
	Rd      uint8
	Address AddressOperand
}

func (CoreDataTransferParams) operationClass() OperationClass { return CoreDataTransfer }

// MultiTransferMode names the {P,U} addressing mode of a block
// transfer, independent of the stack-style alias chosen for display.
type MultiTransferMode uint8

const (
	IA MultiTransferMode = iota // increment after
	IB                          // increment before
	DA                          // decrement after
	DB                          // decrement before
)

// CoreMultiTransferParams covers LDM/STM.
type CoreMultiTransferParams struct {
	Load      bool
	Mode      MultiTransferMode
	Rn        uint8
	Writeback bool
	UserBank  bool // S bit: force user-mode registers / restore PSR on LDM with PC
	RegList   uint16
}

func (CoreMultiTransferParams) operationClass() OperationClass { return CoreMultiTransfer }

// BranchParams covers B/BL.
type BranchParams struct {
	Link   bool
	Target uint32 // absolute target address
}

func (BranchParams) operationClass() OperationClass { return Branch }

// SoftwareIrqParams covers SWI/SVC.
type SoftwareIrqParams struct {
	Comment uint32 // 24-bit ordinal
}

func (SoftwareIrqParams) operationClass() OperationClass { return SoftwareIrq }

// BreakpointParams covers BKPT (ARMv5+).
type BreakpointParams struct {
	Comment uint16 // 16-bit immediate split across bits 8-19 and 0-3
}

func (BreakpointParams) operationClass() OperationClass { return Breakpoint }

// AtomicSwapParams covers SWP/SWPB.
type AtomicSwapParams struct {
	Byte bool
	Rd   uint8
	Rm   uint8
	Rn   uint8
}

func (AtomicSwapParams) operationClass() OperationClass { return AtomicSwap }

// MoveFromPSRParams covers MRS (ARMv3+).
type MoveFromPSRParams struct {
	Rd   uint8
	SPSR bool
}

func (MoveFromPSRParams) operationClass() OperationClass { return MoveFromPSR }

// MoveToPSRParams covers MSR (ARMv3+), register or immediate form.
type MoveToPSRParams struct {
	SPSR       bool
	FlagsOnly  bool // only the flag bits (bits 24-31) are written
	Immediate  bool
	Rm         uint8
	RotateImm8 uint32 // used when Immediate is true
}

func (MoveToPSRParams) operationClass() OperationClass { return MoveToPSR }

// BranchExchangeParams covers BX/BLX (register form).
type BranchExchangeParams struct {
	Link bool
	Rm   uint8
}

func (BranchExchangeParams) operationClass() OperationClass { return BranchExchange }

// CoProcDataProcessingParams covers CDP.
type CoProcDataProcessingParams struct {
	CoProc uint8
	Opcode uint8
	CRd    uint8
	CRn    uint8
	CRm    uint8
	Info   uint8
}

func (CoProcDataProcessingParams) operationClass() OperationClass { return CoProcDataProcessing }

// CoProcRegisterTransferParams covers MRC/MCR.
type CoProcRegisterTransferParams struct {
	Load   bool // MRC
	CoProc uint8
	Opcode uint8
	CRn    uint8
	Rd     uint8
	CRm    uint8
	Info   uint8
}

func (CoProcRegisterTransferParams) operationClass() OperationClass { return CoProcRegisterTransfer }

// CoProcDataTransferParams covers LDC/STC.
type CoProcDataTransferParams struct {
	Load    bool
	Long    bool // N bit
	CoProc  uint8
	CRd     uint8
	Address AddressOperand
}

func (CoProcDataTransferParams) operationClass() OperationClass { return CoProcDataTransfer }

// FpaPrecision identifies the FPA operand/result precision encoded in
// the coprocessor-space register fields.
type FpaPrecision uint8

const (
	FpaSingle FpaPrecision = iota
	FpaDouble
	FpaExtended
)

// FpaDataTransferParams covers FPA LDF/STF (load/store single FPA
// register, coprocessor-space CoProcDataTransfer specialised to
// cp_num 1/2).
type FpaDataTransferParams struct {
	Load      bool
	Precision FpaPrecision
	Fd        uint8
	Address   AddressOperand
}

func (FpaDataTransferParams) operationClass() OperationClass { return FpaDataTransfer }

// FpaDyadicParams covers two-operand FPA arithmetic (ADF/SUF/MUF/...).
type FpaDyadicParams struct {
	Opcode    uint8
	Precision FpaPrecision
	Fd        uint8
	Fn        uint8
	Fm        uint8
	Immediate bool // Fm replaced by a small constant index 0-9
}

func (FpaDyadicParams) operationClass() OperationClass { return FpaDyadic }

// FpaMonadicParams covers single-operand FPA arithmetic (MVF/MNF/ABS/...).
type FpaMonadicParams struct {
	Opcode    uint8
	Precision FpaPrecision
	Fd        uint8
	Fm        uint8
	Immediate bool
}

func (FpaMonadicParams) operationClass() OperationClass { return FpaMonadic }

// FpaRegisterTransferParams covers FLT/FIX and the FPA<->ARM register
// transfer instructions.
type FpaRegisterTransferParams struct {
	ToFpa     bool // FLT: Rd(ARM)->Fn(FPA); false: FIX Fm->Rd
	Precision FpaPrecision
	Rd        uint8
	Fn        uint8
}

func (FpaRegisterTransferParams) operationClass() OperationClass { return FpaRegisterTransfer }

// FpaComparisonParams covers CMF/CNF.
type FpaComparisonParams struct {
	Negated   bool
	Fn        uint8
	Fm        uint8
	Immediate bool
}

func (FpaComparisonParams) operationClass() OperationClass { return FpaComparison }

// FpaStatusTransferParams covers WFS/RFS/WFC/RFC.
type FpaStatusTransferParams struct {
	Write    bool
	ControlW bool // status word vs control word
	Rd       uint8
}

func (FpaStatusTransferParams) operationClass() OperationClass { return FpaStatusTransfer }

package options

// FormatFlags toggles textual rendering choices independent of the
// underlying instruction semantics.
type FormatFlags uint16

const (
	ShowOffsets FormatFlags = 1 << iota
	UseCoreRegAliases
	UseAPCSRegAliases
	UseDecimalImmediates
	UseDecimalOffsets
	UseDecimalComments
	UseBasicStyleHex
)

// Has reports whether flag is set.
func (f FormatFlags) Has(flag FormatFlags) bool {
	return f&flag != 0
}

// FormatterOptions configures the codec's Format stage.
type FormatterOptions struct {
	InstructionAddress uint32
	Flags              FormatFlags

	// AppendAddressSymbol, if non-nil, appends a symbolic name for a
	// PC-relative address to text and returns true if it did so. When
	// nil (or it returns false) the formatter substitutes a numeric
	// offset or absolute address per Flags.
	AppendAddressSymbol func(address uint32, text *string) bool

	// AppendSWIComment, if non-nil, appends a human name for an SWI
	// ordinal to text and returns true if it did so.
	AppendSWIComment func(swiNumber uint32, text *string) bool
}

// TokenKind classifies a single token of formatted output so a
// consumer can colour or link it.
type TokenKind uint8

const (
	TokenCoreMnemonic TokenKind = iota
	TokenCoProcMnemonic
	TokenFpaMnemonic
	TokenDataDirectiveMnemonic
	TokenSeparator
	TokenWritebackMarker
	TokenModifyPsrMarker
	TokenCoreRegister
	TokenBeginAddrOperand
	TokenEndAddrOperand
	TokenCoreRegList
	TokenCoProcessorID
	TokenCoProcessorRegister
	TokenFpaRegister
	TokenShift
	TokenImmediateConstant
	TokenLabel
	TokenDataValue
)

// Token is one classified unit of formatted instruction text.
type Token struct {
	Kind TokenKind
	Text string
	Data uint32
}

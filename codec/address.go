package codec

// AddressFlags carries the addressing-mode bits shared by single-register
// and co-processor data transfers. Block transfers carry their mode and
// write-back in CoreMultiTransferParams instead.
type AddressFlags uint8

const (
	PreIndexed AddressFlags = 1 << iota
	Writeback
	NegativeOffset
)

// Has reports whether flag is set.
func (f AddressFlags) Has(flag AddressFlags) bool {
	return f&flag != 0
}

// AddressOperand is the base-plus-offset addressing operand used by
// CoreDataTransfer, CoProcDataTransfer and FpaDataTransfer.
// Post-indexed iff PreIndexed is clear; Writeback
// must be clear in post-indexed mode (pre-indexed uses it to mean
// "update base after access", post-indexed always updates the base).
type AddressOperand struct {
	Rn     uint8
	Offset ShifterOperand
	Flags  AddressFlags
}

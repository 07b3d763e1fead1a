package memc

// writeMEMC handles a write to the CAM/VIDC/MEMC-control region
// (addr >= VidcStart): the write's *address*, not its value, carries
// the payload. Only a write to the MEMC control register's test-mode
// bit can fail.
func (h *Hardware) writeMEMC(addr uint32, value uint32) error {
	addr &= AddrSpaceEnd - 1

	switch {
	case addr < MemcCtrlStart:
		// The low 2 MiB of the VIDC/ROM window: VIDC decodes the
		// register ID from the value itself, so the address is
		// passed through unused.
		h.VIDC.Write(addr, value)
		return nil
	case addr&0x3E00000 == MemcCtrlStart:
		return h.writeControlRegister(addr)
	default:
		h.writeCAM(addr)
		return nil
	}
}

// writeControlRegister decodes the MEMC control register from the
// write address: page size (bits 2-3), video/sound DMA enables (bits
// 10-11), OS-mode (bit 12), and test mode (bit 13). Test mode must
// never be enabled during normal operation — real MEMC hardware halts
// the processor and removes DRAM refresh — so it is surfaced as an
// error instead of applied.
func (h *Hardware) writeControlRegister(addr uint32) error {
	h.setPageSize(uint8(extractBits(addr, 2, 2)) + 12)
	h.videoDMAEnabled = extractBit(addr, 10)
	h.soundDMAEnabled = extractBit(addr, 11)
	h.osMode = extractBit(addr, 12)

	if extractBit(addr, 13) {
		return ErrTestModeEnabled
	}

	return nil
}

// writeCAM programs one page-table entry from a write to the
// AddrTransStart region, decoding the entry from addr with the
// extraction scheme for the current page size.
func (h *Hardware) writeCAM(addr uint32) {
	var logicalPage, physPageNo uint16
	var ppl uint8

	switch h.pageSizeLog2 {
	case 12:
		logicalPage, physPageNo, ppl = decodeCAM4KiB(addr)
	case 13:
		logicalPage, physPageNo, ppl = decodeCAM8KiB(addr)
	case 14:
		logicalPage, physPageNo, ppl = decodeCAM16KiB(addr)
	case 15:
		logicalPage, physPageNo, ppl = decodeCAM32KiB(addr)
	default:
		return
	}

	h.pageTable[logicalPage] = pageTableEntry(physPageNo, ppl)
}

func extractBits(value uint32, shift, width uint) uint32 {
	return (value >> shift) & (1<<width - 1)
}

func extractAndShiftBits(value uint32, srcShift, destShift, width uint) uint32 {
	return ((value >> srcShift) & (1<<width - 1)) << destShift
}

func extractBit(value uint32, bit uint) bool {
	return (value>>bit)&1 != 0
}

// decodeCAM4KiB decodes a page-table entry from a CAM write address at
// the 4 KiB page size: only two MEMC chips are addressable (one chip
// ID bit), giving 8192 logical pages.
//
// Bit layout: physical page = bits[0:7] (bit 7 is the chip ID, folded
// in below) | bit 7; PPL = bits[8:10]; logical page = bits[12:23],
// with bits[10:12] forming the logical page's two high bits.
func decodeCAM4KiB(addr uint32) (logicalPage uint16, physPageNo uint16, ppl uint8) {
	memcID := extractBits(addr, 7, 1)
	ppl = uint8(extractBits(addr, 8, 2))

	physPageNo = uint16(extractBits(addr, 0, 7))
	physPageNo |= uint16(memcID) << 7

	logicalPage = uint16(extractBits(addr, 12, 11))
	logicalPage |= uint16(extractAndShiftBits(addr, 10, 11, 2))

	return logicalPage, physPageNo, ppl
}

// decodeCAM8KiB decodes a page-table entry from a CAM write address at
// the 8 KiB page size: quad MEMC (two chip-ID bits), 4096 logical
// pages.
func decodeCAM8KiB(addr uint32) (logicalPage uint16, physPageNo uint16, ppl uint8) {
	memcID := extractBits(addr, 7, 1)
	memcID |= extractBits(addr, 11, 1) << 1
	ppl = uint8(extractBits(addr, 8, 2))

	physPageNo = uint16(extractBits(addr, 1, 6))
	physPageNo |= uint16(extractAndShiftBits(addr, 0, 6, 1))
	physPageNo |= uint16(memcID) << 7

	logicalPage = uint16(extractBits(addr, 13, 10))
	logicalPage |= uint16(extractAndShiftBits(addr, 10, 10, 2))

	return logicalPage, physPageNo, ppl
}

// decodeCAM16KiB decodes a page-table entry from a CAM write address
// at the 16 KiB page size: quad MEMC, 2048 logical pages.
func decodeCAM16KiB(addr uint32) (logicalPage uint16, physPageNo uint16, ppl uint8) {
	memcID := extractBits(addr, 7, 1)
	memcID |= extractBits(addr, 11, 1) << 1
	ppl = uint8(extractBits(addr, 8, 2))

	physPageNo = uint16(extractBits(addr, 2, 5))
	physPageNo |= uint16(extractAndShiftBits(addr, 0, 5, 2))
	physPageNo |= uint16(memcID) << 7

	logicalPage = uint16(extractBits(addr, 14, 9))
	logicalPage |= uint16(extractAndShiftBits(addr, 10, 9, 2))

	return logicalPage, physPageNo, ppl
}

// decodeCAM32KiB decodes a page-table entry from a CAM write address
// at the 32 KiB page size: quad MEMC, 1024 logical pages.
func decodeCAM32KiB(addr uint32) (logicalPage uint16, physPageNo uint16, ppl uint8) {
	memcID := extractBits(addr, 7, 1)
	memcID |= extractBits(addr, 11, 1) << 1
	ppl = uint8(extractBits(addr, 8, 2))

	physPageNo = uint16(extractBits(addr, 3, 4))
	physPageNo |= uint16(extractAndShiftBits(addr, 0, 4, 1))
	physPageNo |= uint16(extractAndShiftBits(addr, 2, 5, 1))
	physPageNo |= uint16(extractAndShiftBits(addr, 1, 6, 1))
	physPageNo |= uint16(memcID) << 7

	logicalPage = uint16(extractBits(addr, 15, 8))
	logicalPage |= uint16(extractAndShiftBits(addr, 10, 8, 2))

	return logicalPage, physPageNo, ppl
}

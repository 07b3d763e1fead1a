package memc

// Page-table entry layout: a 16-bit value partitioned as { ppl:2 (high
// bits), physical_page_number:14 (low bits) }, indexed by logical page
// number. The table holds 8192 entries regardless of page size — the
// maximum needed at the smallest (4 KiB) page size.
const (
	pplBitCount = 2
	pplShift    = 16 - pplBitCount
	pplMask     = uint16(1<<pplBitCount-1) << pplShift
	pageNoMask  = uint16(1<<pplShift) - 1
)

func pageTableEntry(physPageNo uint16, ppl uint8) uint16 {
	return (physPageNo & pageNoMask) | (uint16(ppl&0x3) << pplShift)
}

func pageTablePPL(entry uint16) uint8 {
	return uint8((entry & pplMask) >> pplShift)
}

func pageTablePhysPageNo(entry uint16) uint16 {
	return entry & pageNoMask
}

// generateRomPageMapping fills table so every logical page maps to
// consecutive pages of physical memory starting at baseAddr, at the
// given page size and PPL. Used to point every logical page at the low
// ROM on reset.
func generateRomPageMapping(table []uint16, baseAddr uint32, pageSizeLog2 uint8, ppl uint8) {
	pageSize := uint32(1) << pageSizeLog2

	for logicalPage := range table {
		targetPhysAddr := baseAddr + pageSize*uint32(logicalPage)
		physPageNo := uint16((targetPhysAddr - PhysRamStart) >> pageSizeLog2)

		table[logicalPage] = pageTableEntry(physPageNo, ppl)
	}
}

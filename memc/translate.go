package memc

// permissionTable is a 32-bit truth table over a 5-bit index
// { is_write:1 (bit 4), ppl:2 (bits 2-3), is_privileged:1 (bit 1),
// is_os_mode:1 (bit 0) }; bit N of the constant is 1 iff that
// combination of access mode, PPL and operation is permitted. Derived
// offline from the MEMC data sheet's access-permission table; do not
// replace with conditionals — TestPermissionTruthTable in memc_test.go
// cross-checks every one of the 32 combinations against an independent
// implementation of the same table.
const permissionTable uint32 = 0xCCEFEEFF

func permissionIndex(isWrite, privileged, osMode bool, ppl uint8) uint8 {
	var bit uint8

	if osMode {
		bit |= 1 << 0
	}

	if privileged {
		bit |= 1 << 1
	}

	bit |= (ppl & 0x3) << 2

	if isWrite {
		bit |= 1 << 4
	}

	return bit
}

func accessAllowed(isWrite, privileged, osMode bool, ppl uint8) bool {
	index := permissionIndex(isWrite, privileged, osMode, ppl)

	return (permissionTable>>index)&1 == 1
}

// translateAddress maps a logical address below PhysRamStart to a
// physical address and reports whether the current processor mode may
// perform the given access. Every address in the translated range has
// a mapping, so only the permission outcome is reported.
func (h *Hardware) translateAddress(logicalAddr uint32, isWrite bool) (physAddr uint32, allowed bool) {
	logicalPage := logicalAddr >> h.pageSizeLog2
	entry := h.pageTable[uint16(logicalPage)]

	physAddr = uint32(pageTablePhysPageNo(entry))<<h.pageSizeLog2 + PhysRamStart
	physAddr += logicalAddr & h.pageOffsetMask

	allowed = accessAllowed(isWrite, h.privilegedMode, h.osMode, pageTablePPL(entry))

	return physAddr, allowed
}

// LogicalToPhysicalAddress translates a guest address without
// performing a permission check, for diagnostic use (e.g. a debugger
// resolving a breakpoint's logical address). Addresses at or above
// PhysRamStart are already physical and map 1:1.
func (h *Hardware) LogicalToPhysicalAddress(logicalAddr uint32) uint32 {
	if logicalAddr >= PhysRamStart {
		return logicalAddr
	}

	physAddr, _ := h.translateAddress(logicalAddr, false)

	return physAddr
}

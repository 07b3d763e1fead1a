package memc

import (
	"github.com/lookbusy1344/archemu/addrmap"
	"github.com/lookbusy1344/archemu/binary"
)

// resolution is the outcome of resolving one logical address for a
// single word access: at most one of host/mmio/isCAM is set.
type resolution struct {
	host    []byte // a 4-byte window into RAM/ROM backing this word, if host-mapped
	mmio    addrmap.MMIORegion
	offset  uint32
	isCAM   bool
	camAddr uint32
	allowed bool
}

// resolveRead locates the word at logicalAddr for a read access,
// following the same region precedence as a write: translated
// addresses first, then direct physical RAM, then MMIO, then ROM.
func (h *Hardware) resolveRead(logicalAddr uint32) resolution {
	if logicalAddr < PhysRamStart {
		physAddr, allowed := h.translateAddress(logicalAddr, false)
		if !allowed {
			return resolution{}
		}

		if physAddr < LowRomStart {
			offset := (physAddr - PhysRamStart) % uint32(len(h.ram))

			return resolution{host: h.ram[offset : offset+4 : offset+4], allowed: true}
		}

		// After a reset the page table points at the low ROM; let
		// decoding continue as if this were a direct ROM access.
		logicalAddr = physAddr
	}

	switch {
	case logicalAddr < IOAddrStart:
		offset := (logicalAddr - PhysRamStart) % uint32(len(h.ram))

		return resolution{host: h.ram[offset : offset+4 : offset+4], allowed: h.privilegedMode}
	case logicalAddr < VidcStart:
		if !h.privilegedMode {
			return resolution{}
		}

		return h.resolveMMIO(&h.readMap, logicalAddr)
	case logicalAddr >= HighRomStart:
		return resolveRom(h.highRom, logicalAddr-HighRomStart)
	default:
		return resolveRom(h.lowRom, logicalAddr-LowRomStart)
	}
}

// resolveWrite locates the word at logicalAddr for a write access.
// Unlike reads, a translated address always lands on RAM (the ROM
// only appears via translation when the table hasn't been
// reprogrammed since reset, and ROM cannot be written), and addresses
// at or above VidcStart are CAM/VIDC/MEMC-control writes rather than
// host memory.
func (h *Hardware) resolveWrite(logicalAddr uint32) resolution {
	if logicalAddr < PhysRamStart {
		physAddr, allowed := h.translateAddress(logicalAddr, true)
		if !allowed {
			return resolution{}
		}

		offset := (physAddr - PhysRamStart) % uint32(len(h.ram))

		return resolution{host: h.ram[offset : offset+4 : offset+4], allowed: true}
	}

	if logicalAddr < IOAddrStart {
		offset := (logicalAddr - PhysRamStart) % uint32(len(h.ram))

		return resolution{host: h.ram[offset : offset+4 : offset+4], allowed: h.privilegedMode}
	}

	if !h.privilegedMode {
		return resolution{}
	}

	if logicalAddr >= VidcStart {
		return resolution{isCAM: true, camAddr: logicalAddr, allowed: true}
	}

	return h.resolveMMIO(&h.writeMap, logicalAddr)
}

func (h *Hardware) resolveMMIO(m *addrmap.AddressMap, logicalAddr uint32) resolution {
	region, offset, _, ok := m.TryFindRegion(logicalAddr)
	if !ok {
		// Access is allowed but nothing is mapped here: reads return
		// fuzz, writes are absorbed.
		return resolution{allowed: true}
	}

	if mmio, ok := region.(addrmap.MMIORegion); ok {
		return resolution{mmio: mmio, offset: offset, allowed: true}
	}

	hostBlock := region.(addrmap.HostBlockRegion).Bytes()

	return resolution{host: hostBlock[offset : offset+4 : offset+4], allowed: true}
}

func resolveRom(rom []byte, offset uint32) resolution {
	if uint64(offset)+4 > uint64(len(rom)) {
		return resolution{allowed: true}
	}

	return resolution{host: rom[offset : offset+4 : offset+4], allowed: true}
}

// ReadWord reads one 32-bit word from logicalAddr. ok is false if the
// current processor mode is not permitted to read the address.
func (h *Hardware) ReadWord(logicalAddr uint32) (value uint32, ok bool) {
	res := h.resolveRead(logicalAddr)
	if !res.allowed {
		return 0, false
	}

	switch {
	case res.host != nil:
		return binary.LoadLittle32(res.host), true
	case res.mmio != nil:
		return res.mmio.Read(res.offset), true
	default:
		return h.nextFuzzWord(), true
	}
}

// WriteWord writes value as one 32-bit word to logicalAddr. ok is
// false if the current processor mode is not permitted to write the
// address. err is non-nil only for ErrTestModeEnabled.
func (h *Hardware) WriteWord(logicalAddr uint32, value uint32) (ok bool, err error) {
	res := h.resolveWrite(logicalAddr)
	if !res.allowed {
		return false, nil
	}

	switch {
	case res.host != nil:
		binary.StoreLittle32(res.host, value)
		return true, nil
	case res.mmio != nil:
		res.mmio.Write(res.offset, value)
		return true, nil
	case res.isCAM:
		if err := h.writeMEMC(res.camAddr, value); err != nil {
			return false, err
		}

		return true, nil
	default:
		return true, nil
	}
}

// ReadWords reads count words starting at logicalAddr into out. Only
// a failure on the first word is reported as ok == false; a failure on
// a later word truncates the read without signalling failure, matching
// a guest abort only being raised for the first inaccessible word of a
// multi-word transfer.
func (h *Hardware) ReadWords(logicalAddr uint32, out []uint32) (ok bool, err error) {
	for i := range out {
		value, allowed := h.ReadWord(logicalAddr + uint32(i)*4)
		if !allowed {
			if i == 0 {
				return false, nil
			}

			break
		}

		out[i] = value
		ok = true
	}

	return ok, nil
}

// WriteWords writes values starting at logicalAddr, with the same
// first-word-aborts, later-words-truncate semantics as ReadWords. err
// is non-nil only if a write decoded as an ErrTestModeEnabled control
// register write.
func (h *Hardware) WriteWords(logicalAddr uint32, values []uint32) (ok bool, err error) {
	for i, value := range values {
		written, writeErr := h.WriteWord(logicalAddr+uint32(i)*4, value)
		if writeErr != nil {
			return ok, writeErr
		}

		if !written {
			if i == 0 {
				return false, nil
			}

			break
		}

		ok = true
	}

	return ok, nil
}

func (h *Hardware) nextFuzzWord() uint32 {
	var word [4]byte

	for i := range word {
		word[i] = h.nextFuzzByte()
	}

	return binary.LoadLittle32(word[:])
}

// Package memc emulates the MEMC memory controller: logical-to-physical
// page translation, branchless permission checks, and read/write
// dispatch across RAM, ROM, memory-mapped I/O, and the content
// addressable memory (CAM) window used to program the controller
// itself.
package memc

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/lookbusy1344/archemu/addrmap"
	"github.com/lookbusy1344/archemu/ioc"
	"github.com/lookbusy1344/archemu/system"
	"github.com/lookbusy1344/archemu/vidc"
)

// Fixed address regions, in the 64 MiB MEMC physical address space.
const (
	PhysRamStart   = 0x02000000 // end of the translated logical range, start of 1:1 physical RAM
	IOAddrStart    = 0x03000000 // start of the MMIO window
	VidcStart      = 0x03400000 // start of the VIDC write window / low ROM read window
	MemcCtrlStart  = 0x03600000 // start of the MEMC control register window
	AddrTransStart = 0x03800000 // start of the CAM page-table programming window / high ROM read window
	AddrSpaceEnd   = 0x04000000
	LowRomStart    = VidcStart
	HighRomStart   = AddrTransStart

	ioWindowEnd = VidcStart // exclusive

	pageTableSize = 8192 // 8192 logical pages, sized for the smallest (4 KiB) page

	lowRomMax  = 4 * 1024 * 1024
	highRomMax = 8 * 1024 * 1024

	fuzzSize     = 256
	fuzzSizeMask = fuzzSize - 1

	iocBaseAddress = 0x03200000
)

// ramTiersKB are the only RAM sizes MEMC supports; a requested size is
// rounded up to the next tier.
var ramTiersKB = [...]uint32{512, 1024, 2048, 4096, 8192, 12288}

// ErrTestModeEnabled is returned when the guest writes the MEMC
// control register with the test-mode bit set. Per the MEMC data
// sheet, test mode removes all DRAM refresh and halts the processor;
// real hardware never exercises it during normal operation, so this is
// treated as a fatal, unrecoverable condition rather than a guest
// fault.
var ErrTestModeEnabled = errors.New("memc: test mode enabled")

// Hardware is the MEMC memory controller: it owns RAM, ROM, the page
// table, and the IOC and VIDC devices, and arbitrates every guest
// memory access through them.
type Hardware struct {
	IOC  *ioc.IOC
	VIDC *vidc.VIDC

	readMap  addrmap.AddressMap
	writeMap addrmap.AddressMap

	ram     []byte
	lowRom  []byte
	highRom []byte

	pageTable [pageTableSize]uint16

	pageSizeLog2   uint8
	pageOffsetMask uint32

	osMode          bool
	videoDMAEnabled bool
	soundDMAEnabled bool

	privilegedMode bool
	pc             uint32

	fuzz      [fuzzSize]byte
	fuzzIndex uint8
}

// New constructs a MEMC instance with ramSizeBytes rounded up to the
// nearest supported tier, IOC and VIDC wired into readMap/writeMap,
// and resets to its power-on state (page table pointing at the low
// ROM). readMap and writeMap supply any supplementary host-memory or
// MMIO regions configured outside this package; their mappings are
// copied, not shared, so later changes to the caller's maps do not
// alias Hardware's own copies.
func New(sys *system.Context, ramSizeBytes uint32, readMap, writeMap *addrmap.AddressMap, logger *log.Logger) (*Hardware, error) {
	h := &Hardware{
		IOC:  ioc.New(sys, 8, 8),
		VIDC: vidc.New(logger),
		ram:  make([]byte, roundUpRamSize(ramSizeBytes)),
	}

	for i := range h.fuzz {
		h.fuzz[i] = byte(rand.Uint32())
	}

	if readMap != nil {
		cloneInto(&h.readMap, readMap)
	}

	if writeMap != nil {
		cloneInto(&h.writeMap, writeMap)
	}

	if !h.readMap.TryInsert(iocBaseAddress, h.IOC) || !h.writeMap.TryInsert(iocBaseAddress, h.IOC) {
		return nil, fmt.Errorf("memc: IOC conflicts with an existing mapping at %#08x", iocBaseAddress)
	}

	h.Reset()

	return h, nil
}

func cloneInto(dst *addrmap.AddressMap, src *addrmap.AddressMap) {
	for _, m := range src.Mappings() {
		dst.TryInsert(m.Address, m.Region)
	}
}

func roundUpRamSize(requestedBytes uint32) uint32 {
	requestedKB := requestedBytes / 1024

	for _, tierKB := range ramTiersKB {
		if requestedKB <= tierKB {
			return tierKB * 1024
		}
	}

	return ramTiersKB[len(ramTiersKB)-1] * 1024
}

// SetLowRom replaces the low ROM image. It is an error for romBytes to
// exceed the 4 MiB low ROM window.
func (h *Hardware) SetLowRom(romBytes []byte) error {
	if len(romBytes) > lowRomMax {
		return fmt.Errorf("memc: low ROM image of %d bytes exceeds the %d byte limit", len(romBytes), lowRomMax)
	}

	h.lowRom = make([]byte, lowRomMax)
	copy(h.lowRom, romBytes)

	return nil
}

// SetHighRom replaces the high ROM image. It is an error for romBytes
// to exceed the 8 MiB high ROM window.
func (h *Hardware) SetHighRom(romBytes []byte) error {
	if len(romBytes) > highRomMax {
		return fmt.Errorf("memc: high ROM image of %d bytes exceeds the %d byte limit", len(romBytes), highRomMax)
	}

	h.highRom = make([]byte, highRomMax)
	copy(h.highRom, romBytes)

	return nil
}

// Connect registers IOC and VIDC with cc and lets IOC resolve its own
// collaborators (the keyboard controller). A keyboard controller must
// be registered with cc before this call, so IOC can find it by name,
// and Connected after it, so it can find IOC.
func (h *Hardware) Connect(cc *addrmap.ConnectionContext) {
	cc.RegisterDevice(h.IOC)
	cc.RegisterDevice(h.VIDC)
	h.IOC.Connect(cc)
}

// SetPrivilegedMode sets the CPU-privilege flag MEMC consults for
// permission checks; a real MEMC wires this to the CPU's mode lines.
func (h *Hardware) SetPrivilegedMode(privileged bool) {
	h.privilegedMode = privileged
}

// PrivilegedMode reports the current CPU-privilege flag.
func (h *Hardware) PrivilegedMode() bool {
	return h.privilegedMode
}

// SetPC records the program counter, consulted by nothing in this
// package yet but exposed as the CPU-facing surface spec.md names.
func (h *Hardware) SetPC(pc uint32) {
	h.pc = pc
}

// PC returns the last value set by SetPC.
func (h *Hardware) PC() uint32 {
	return h.pc
}

// Reset restores the power-on/reset state: 4 KiB pages, OS-mode and
// sound-DMA enable cleared, every logical page mapped to the low ROM
// with PPL=1 so a freshly reset CPU fetching address 0 reads the first
// ROM word. Video-DMA-enable and RAM contents are preserved, matching
// the MEMC data sheet.
func (h *Hardware) Reset() {
	h.setPageSize(12)
	h.osMode = false
	h.soundDMAEnabled = false

	generateRomPageMapping(h.pageTable[:], LowRomStart, h.pageSizeLog2, 1)
}

func (h *Hardware) setPageSize(pageSizeLog2 uint8) {
	h.pageSizeLog2 = pageSizeLog2
	h.pageOffsetMask = (uint32(1) << pageSizeLog2) - 1
}

func (h *Hardware) nextFuzzByte() byte {
	b := h.fuzz[h.fuzzIndex]
	h.fuzzIndex = (h.fuzzIndex + 1) & fuzzSizeMask

	return b
}

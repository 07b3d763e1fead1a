package memc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/archemu/addrmap"
	"github.com/lookbusy1344/archemu/memc"
	"github.com/lookbusy1344/archemu/system"
)

func newTestHardware(t *testing.T) *memc.Hardware {
	t.Helper()

	sys := system.NewContext(8_000_000, nil)
	h, err := memc.New(sys, 4*1024*1024, nil, nil, nil)
	require.NoError(t, err)

	return h
}

func TestPermissionTruthTable(t *testing.T) {
	h := newTestHardware(t)

	for write := 0; write < 2; write++ {
		for privileged := 0; privileged < 2; privileged++ {
			for osMode := 0; osMode < 2; osMode++ {
				for ppl := 0; ppl < 4; ppl++ {
					// Programming the page and the control register both
					// require privileged mode; do that setup first, then
					// switch to the mode under test before the actual
					// access check.
					programCAM4KiB(h, 0, 0, uint8(ppl))
					setOSMode(h, osMode == 1)
					h.SetPrivilegedMode(privileged == 1)

					want := expectedAccessAllowed(write == 1, privileged == 1, osMode == 1, uint8(ppl))
					got := checkAccess(h, write == 1)

					assert.Equal(t, want, got, "write=%d privileged=%d osMode=%d ppl=%d", write, privileged, osMode, ppl)
				}
			}
		}
	}
}

// expectedAccessAllowed is an independent restatement of the MEMC
// access-permission rule, used to cross-check the 0xCCEFEEFF constant:
// supervisor/OS modes may always read; writes require PPL 0 in user
// mode, or PPL 0/1 with OS-mode or full privilege.
func expectedAccessAllowed(write, privileged, osMode bool, ppl uint8) bool {
	if privileged {
		return true
	}

	if !write {
		return ppl != 2 && ppl != 3 || osMode
	}

	switch ppl {
	case 0:
		return true
	case 1:
		return osMode
	default:
		return false
	}
}

// checkAccess exercises MEMC's actual translate+permission path for
// logical page 0 through the public read/write API, under whatever
// mode h is currently set to.
func checkAccess(h *memc.Hardware, write bool) bool {
	if write {
		ok, err := h.WriteWord(0, 0x11223344)
		if err != nil {
			panic(err)
		}

		return ok
	}

	_, ok := h.ReadWord(0)

	return ok
}

// programCAM4KiB writes the CAM address that maps logicalPage to
// physicalPage at the given PPL, assuming the current page size is
// 4 KiB (MEMC's power-on default).
func programCAM4KiB(h *memc.Hardware, logicalPage, physicalPage uint16, ppl uint8) {
	h.SetPrivilegedMode(true)

	addr := uint32(memc.AddrTransStart)
	addr |= uint32(physicalPage & 0x7F)
	addr |= uint32(ppl&0x3) << 8
	addr |= (uint32(logicalPage) & 0x7FF) << 12
	addr |= (uint32(logicalPage)>>11&0x3) << 10

	_, err := h.WriteWord(addr, 0)
	if err != nil {
		panic(err)
	}
}

func setOSMode(h *memc.Hardware, osMode bool) {
	addr := uint32(memc.MemcCtrlStart)
	if osMode {
		addr |= 1 << 12
	}

	h.SetPrivilegedMode(true)

	_, err := h.WriteWord(addr, 0)
	if err != nil {
		panic(err)
	}
}

func TestCAMRoundTrip4KiB(t *testing.T) {
	h := newTestHardware(t)

	programCAM4KiB(h, 2, 1, 0)
	h.SetPrivilegedMode(true)

	ok, err := h.WriteWord(2*0x1000+0xC, 0xDEADBEEF)
	require.NoError(t, err)
	require.True(t, ok)

	value, ok := h.ReadWord(memc.PhysRamStart + 0x1000 + 0xC)
	require.True(t, ok)
	assert.Equal(t, uint32(0xDEADBEEF), value)
}

// TestCAMRoundTrip8KiB exercises the 8 KiB CAM decode scheme: logical
// page 2 mapped to physical page 1 at PPL 0.
func TestCAMRoundTrip8KiB(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	_, err := h.WriteWord(memc.MemcCtrlStart|(1<<2), 0)
	require.NoError(t, err)

	camAddr := uint32(memc.AddrTransStart)
	camAddr |= extractForTest(1, 1, 6)         // physical page bits0-5 -> addr bits1-6
	camAddr |= extractAndShiftForTest(2, 0, 13, 10) // logical page bits0-9 -> addr bits13-22

	_, err = h.WriteWord(camAddr, 0)
	require.NoError(t, err)

	const pageSize = 0x2000
	logicalAddr := uint32(2*pageSize + 0xC)
	physAddr := uint32(memc.PhysRamStart + pageSize + 0xC)

	ok, err := h.WriteWord(logicalAddr, 0xCAFEBABE)
	require.NoError(t, err)
	require.True(t, ok)

	value, ok := h.ReadWord(physAddr)
	require.True(t, ok)
	assert.Equal(t, uint32(0xCAFEBABE), value)
}

// TestCAMRoundTrip32KiB exercises the 32 KiB CAM decode scheme:
// logical page 2 mapped to physical page 1 at PPL 0.
func TestCAMRoundTrip32KiB(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	_, err := h.WriteWord(memc.MemcCtrlStart|(3<<2), 0)
	require.NoError(t, err)

	camAddr := uint32(memc.AddrTransStart)
	camAddr |= extractForTest(1, 3, 4)        // physical page bits0-3 -> addr bits3-6
	camAddr |= extractAndShiftForTest(2, 0, 15, 8) // logical page bits0-7 -> addr bits15-22

	_, err = h.WriteWord(camAddr, 0)
	require.NoError(t, err)

	const pageSize = 0x8000
	logicalAddr := uint32(2*pageSize + 0xC)
	physAddr := uint32(memc.PhysRamStart + pageSize + 0xC)

	ok, err := h.WriteWord(logicalAddr, 0x0BADF00D)
	require.NoError(t, err)
	require.True(t, ok)

	value, ok := h.ReadWord(physAddr)
	require.True(t, ok)
	assert.Equal(t, uint32(0x0BADF00D), value)
}

// TestMEMC16KiBMapping is the named end-to-end scenario from the
// design spec: set 16 KiB pages, map logical page 2 to physical page 1
// at PPL 0, write through the logical address and read back through
// the physical alias.
func TestMEMC16KiBMapping(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	_, err := h.WriteWord(0x036E0008, 0)
	require.NoError(t, err)

	const pageSizeLog2 = 14
	const logicalPage = 2
	const physicalPage = 1

	camAddr := uint32(memc.AddrTransStart)
	camAddr |= extractForTest(physicalPage, 2, 5)
	camAddr |= extractAndShiftForTest(physicalPage, 5, 0, 2)
	camAddr |= extractForTest(logicalPage, 0, 9) << 14
	camAddr |= extractAndShiftForTest(logicalPage, 9, 10, 2)

	_, err = h.WriteWord(camAddr, 0)
	require.NoError(t, err)

	ok, err := h.WriteWord(0x8000+0x0C, 0xDEADBEEF)
	require.NoError(t, err)
	require.True(t, ok)

	value, ok := h.ReadWord(0x02004000 + 0x0C)
	require.True(t, ok)
	assert.Equal(t, uint32(0xDEADBEEF), value)
}

func extractForTest(value uint32, destBitInValue, width uint32) uint32 {
	return (value & (1<<width - 1)) << destBitInValue
}

func extractAndShiftForTest(value uint32, srcShift, destShift, width uint32) uint32 {
	return ((value >> srcShift) & (1<<width - 1)) << destShift
}

// TestResetRestoresROMVisibility is the named end-to-end scenario:
// after reset, logical addresses 0/4/8 read the first three words of
// the low ROM image in order.
func TestResetRestoresROMVisibility(t *testing.T) {
	h := newTestHardware(t)

	rom := make([]byte, 16)
	rom[0], rom[1], rom[2], rom[3] = 0xEF, 0xBE, 0xAD, 0xDE // 0xDEADBEEF LE
	rom[4], rom[5], rom[6], rom[7] = 0xBE, 0xBA, 0xFE, 0xCA // 0xCAFEBABE LE
	rom[8], rom[9], rom[10], rom[11] = 0x96, 0x24, 0x69, 0x42

	require.NoError(t, h.SetLowRom(rom))

	h.Reset()

	v0, ok := h.ReadWord(0)
	require.True(t, ok)
	v1, ok := h.ReadWord(4)
	require.True(t, ok)
	v2, ok := h.ReadWord(8)
	require.True(t, ok)

	assert.Equal(t, uint32(0xDEADBEEF), v0)
	assert.Equal(t, uint32(0xCAFEBABE), v1)
	assert.Equal(t, uint32(0x42692496), v2)
}

func TestUserModeCannotWritePPL1Page(t *testing.T) {
	h := newTestHardware(t)
	// Power-on reset already maps every page PPL=1 to the low ROM.
	h.SetPrivilegedMode(false)

	_, ok := h.ReadWord(0)
	assert.True(t, ok)

	ok, err := h.WriteWord(0, 0x12345678)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOSModeAllowsWriteToPPL1Page(t *testing.T) {
	h := newTestHardware(t)

	setOSMode(h, true)
	h.SetPrivilegedMode(false)

	ok, err := h.WriteWord(0, 0x12345678)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserModeCannotAccessPPL2Page(t *testing.T) {
	h := newTestHardware(t)

	programCAM4KiB(h, 0, 0, 2)
	setOSMode(h, false)
	h.SetPrivilegedMode(false)

	_, ok := h.ReadWord(0)
	assert.False(t, ok)

	ok, err := h.WriteWord(0, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectPhysicalRamRequiresPrivilege(t *testing.T) {
	h := newTestHardware(t)

	h.SetPrivilegedMode(false)
	_, ok := h.ReadWord(memc.PhysRamStart)
	assert.False(t, ok)

	h.SetPrivilegedMode(true)
	ok, err := h.WriteWord(memc.PhysRamStart, 0xABCDEF01)
	require.NoError(t, err)
	assert.True(t, ok)

	value, ok := h.ReadWord(memc.PhysRamStart)
	require.True(t, ok)
	assert.Equal(t, uint32(0xABCDEF01), value)
}

func TestControlRegisterTestModeIsRejected(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	_, err := h.WriteWord(memc.MemcCtrlStart|(1<<13), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, memc.ErrTestModeEnabled))
}

func TestIOCIsReachableThroughMMIOWindow(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	ok, err := h.WriteWord(0x03200000, 1) // control register
	require.NoError(t, err)
	require.True(t, ok)

	// Reads of bits 0-5 show the pins' input side; drive C0 high.
	h.IOC.SetControlPinInput(0, true)

	value, ok := h.ReadWord(0x03200000)
	require.True(t, ok)
	assert.Equal(t, uint32(1), value&0x1)
}

func TestUnprivilegedCannotReachMMIO(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(false)

	_, ok := h.ReadWord(0x03200000)
	assert.False(t, ok)
}

func TestWriteWordsAbortsOnFirstWordOnly(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(false)

	ok, err := h.WriteWords(memc.PhysRamStart, []uint32{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadWordsAcrossRAM(t *testing.T) {
	h := newTestHardware(t)
	h.SetPrivilegedMode(true)

	require.NoError(t, write(h, memc.PhysRamStart, []uint32{1, 2, 3}))

	out := make([]uint32, 3)
	ok, err := h.ReadWords(memc.PhysRamStart, out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2, 3}, out)
}

func write(h *memc.Hardware, addr uint32, values []uint32) error {
	_, err := h.WriteWords(addr, values)

	return err
}

func TestCustomAddressMapIsCloned(t *testing.T) {
	sys := system.NewContext(8_000_000, nil)

	ram := addrmap.NewGenericHostBlock("extra", "extra RAM", []byte{0x78, 0x56, 0x34, 0x12})
	var readMap addrmap.AddressMap
	require.True(t, readMap.TryInsert(0x03100000, ram))

	h, err := memc.New(sys, 1024*1024, &readMap, nil, nil)
	require.NoError(t, err)

	// Mutating the caller's map afterwards must not affect h.
	readMap.Clear()

	h.SetPrivilegedMode(true)
	value, ok := h.ReadWord(0x03100000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x12345678), value)
}

package breakpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/archemu/breakpoint"
)

type fakeMemory struct {
	words map[uint32]uint32
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{words: make(map[uint32]uint32)}
}

func (m *fakeMemory) ReadWord(addr uint32) (uint32, bool) {
	v, ok := m.words[addr]
	return v, ok
}

func (m *fakeMemory) WriteWord(addr uint32, value uint32) (bool, error) {
	m.words[addr] = value
	return true, nil
}

func TestSetSubstitutesBKPTAndRemembersOriginal(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0xE2800001 // ADD R0, R0, #1

	table := breakpoint.NewTable()

	bp, err := table.Set(mem, "debugger", 0x8000, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xE2800001), bp.OriginalInstruction)
	assert.True(t, bp.Enabled)

	installedWord, ok := mem.ReadWord(0x8000)
	require.True(t, ok)
	assert.True(t, breakpoint.IsBreakpointOpcode(installedWord))
	assert.NotEqual(t, uint32(0xE2800001), installedWord)
}

func TestReplacementsMapExposesOriginalInstruction(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0xE2800001
	mem.words[0x8004] = 0xEAFFFFFE // B .

	table := breakpoint.NewTable()

	_, err := table.Set(mem, "debugger", 0x8000, true)
	require.NoError(t, err)
	_, err = table.Set(mem, "debugger", 0x8004, true)
	require.NoError(t, err)

	replacements := table.Replacements()
	assert.Equal(t, uint32(0xE2800001), replacements[0x8000])
	assert.Equal(t, uint32(0xEAFFFFFE), replacements[0x8004])
	assert.Len(t, replacements, 2)
}

func TestClearRestoresOriginalInstruction(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0xE2800001

	table := breakpoint.NewTable()

	_, err := table.Set(mem, "debugger", 0x8000, true)
	require.NoError(t, err)

	require.NoError(t, table.Clear(mem, 0x8000))

	word, ok := mem.ReadWord(0x8000)
	require.True(t, ok)
	assert.Equal(t, uint32(0xE2800001), word)

	_, found := table.At(0x8000)
	assert.False(t, found)

	assert.Empty(t, table.Replacements())
}

func TestClearUnknownAddressFails(t *testing.T) {
	table := breakpoint.NewTable()
	mem := newFakeMemory()

	err := table.Clear(mem, 0x1234)
	assert.Error(t, err)
}

func TestSetTwiceAtSameAddressDoesNotReReadMemory(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0xE2800001

	table := breakpoint.NewTable()

	first, err := table.Set(mem, "owner-a", 0x8000, true)
	require.NoError(t, err)

	// Simulate the core's own fetch of the breakpoint opcode, which
	// would be the wrong value to capture as "original" if Set
	// re-read memory on a second install at the same address.
	second, err := table.Set(mem, "owner-b", 0x8000, true)
	require.NoError(t, err)

	assert.Equal(t, first.OriginalInstruction, second.OriginalInstruction)
	assert.Equal(t, "owner-b", second.Owner)
	assert.Len(t, table.All(), 1)
}

func TestEnableDisableToggleWithoutTouchingMemory(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0xE2800001

	table := breakpoint.NewTable()
	_, err := table.Set(mem, "debugger", 0x8000, true)
	require.NoError(t, err)

	require.NoError(t, table.Disable(0x8000))
	bp, _ := table.At(0x8000)
	assert.False(t, bp.Enabled)

	word, _ := mem.ReadWord(0x8000)
	assert.True(t, breakpoint.IsBreakpointOpcode(word))

	require.NoError(t, table.Enable(0x8000))
	bp, _ = table.At(0x8000)
	assert.True(t, bp.Enabled)
}

func TestClearAllRestoresEveryBreakpoint(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x8000] = 0x11111111
	mem.words[0x8004] = 0x22222222
	mem.words[0x8008] = 0x33333333

	table := breakpoint.NewTable()
	for _, addr := range []uint32{0x8000, 0x8004, 0x8008} {
		_, err := table.Set(mem, "debugger", addr, true)
		require.NoError(t, err)
	}

	require.NoError(t, table.ClearAll(mem))

	assert.Equal(t, uint32(0x11111111), mem.words[0x8000])
	assert.Equal(t, uint32(0x22222222), mem.words[0x8004])
	assert.Equal(t, uint32(0x33333333), mem.words[0x8008])
	assert.Empty(t, table.All())
}

func TestIsBreakpointOpcodeRejectsOrdinaryInstructions(t *testing.T) {
	assert.False(t, breakpoint.IsBreakpointOpcode(0xE2800001))
}

// Package breakpoint implements opcode-substitution breakpoints: a
// BKPT instruction is written over the guest word at the breakpoint
// address, and the original word is kept in an out-of-band table so a
// disassembler can still show what was really there.
package breakpoint

import (
	"fmt"
	"sync"

	"github.com/lookbusy1344/archemu/codec"
)

// Memory is the subset of memc.Hardware's API this package needs to
// substitute and restore instruction words. Declared locally so this
// package has no dependency on memc; *memc.Hardware satisfies it.
type Memory interface {
	ReadWord(addr uint32) (value uint32, ok bool)
	WriteWord(addr uint32, value uint32) (ok bool, err error)
}

// Breakpoint is one substituted instruction: owner names the
// collaborator that installed it (so a debugger can clear only its
// own breakpoints), address is where the BKPT opcode now sits, and
// isLogicalAddress records whether address is subject to MEMC's
// page-table translation or is a fixed physical address that bypasses
// it (both are valid arguments to Memory.ReadWord/WriteWord; the flag
// is bookkeeping for callers that care, e.g. a symbol resolver).
type Breakpoint struct {
	Owner               string
	Address             uint32
	OriginalInstruction uint32
	IsLogicalAddress    bool
	Enabled             bool
}

// bkptOpcode is BKPT #0, condition AL: the instruction substituted at
// every breakpoint address regardless of what immediate a caller asks
// for, since the immediate has nowhere to go once the original word is
// overwritten (the 16-bit comment field can't hold a 32-bit opcode).
var bkptOpcode = func() uint32 {
	word, err := codec.Assemble(codec.Instruction{
		Class: codec.Breakpoint,
		Cond:  codec.CondAL,
		Params: codec.BreakpointParams{
			Comment: 0,
		},
	}, 0)
	if err != nil {
		panic(fmt.Sprintf("breakpoint: failed to assemble BKPT opcode: %v", err))
	}

	return word
}()

// Table tracks every installed breakpoint and the replacements map a
// disassembler consults to recover pre-breakpoint instructions.
type Table struct {
	mu           sync.RWMutex
	byAddress    map[uint32]*Breakpoint
	replacements map[uint32]uint32
}

// NewTable returns an empty breakpoint table.
func NewTable() *Table {
	return &Table{
		byAddress:    make(map[uint32]*Breakpoint),
		replacements: make(map[uint32]uint32),
	}
}

// Set installs a breakpoint at address, reading and preserving the
// word currently there before overwriting it with BKPT. Setting a
// second breakpoint at an address that already has one replaces the
// owner and re-enables it without re-reading memory, so the original
// instruction is never lost to a second substitution.
func (t *Table) Set(mem Memory, owner string, address uint32, isLogicalAddress bool) (*Breakpoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byAddress[address]; ok {
		existing.Owner = owner
		existing.Enabled = true
		existing.IsLogicalAddress = isLogicalAddress

		return existing, nil
	}

	original, ok := mem.ReadWord(address)
	if !ok {
		return nil, fmt.Errorf("breakpoint: cannot read address %#08x", address)
	}

	if wrote, err := mem.WriteWord(address, bkptOpcode); err != nil {
		return nil, fmt.Errorf("breakpoint: cannot write BKPT at %#08x: %w", address, err)
	} else if !wrote {
		return nil, fmt.Errorf("breakpoint: cannot write BKPT at %#08x", address)
	}

	bp := &Breakpoint{
		Owner:               owner,
		Address:             address,
		OriginalInstruction: original,
		IsLogicalAddress:    isLogicalAddress,
		Enabled:             true,
	}

	t.byAddress[address] = bp
	t.replacements[address] = original

	return bp, nil
}

// Clear removes the breakpoint at address, restoring the original
// instruction word.
func (t *Table) Clear(mem Memory, address uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bp, ok := t.byAddress[address]
	if !ok {
		return fmt.Errorf("breakpoint: no breakpoint at %#08x", address)
	}

	if _, err := mem.WriteWord(address, bp.OriginalInstruction); err != nil {
		return fmt.Errorf("breakpoint: cannot restore %#08x: %w", address, err)
	}

	delete(t.byAddress, address)
	delete(t.replacements, address)

	return nil
}

// ClearAll restores every installed breakpoint's original instruction.
func (t *Table) ClearAll(mem Memory) error {
	t.mu.Lock()
	addresses := make([]uint32, 0, len(t.byAddress))
	for addr := range t.byAddress {
		addresses = append(addresses, addr)
	}
	t.mu.Unlock()

	for _, addr := range addresses {
		if err := t.Clear(mem, addr); err != nil {
			return err
		}
	}

	return nil
}

// Enable and Disable toggle a breakpoint without touching memory: a
// disabled breakpoint still occupies its BKPT opcode (the core is
// expected to consult Enabled before treating a hit as real), so no
// read/write is needed here.
func (t *Table) Enable(address uint32) error {
	return t.setEnabled(address, true)
}

func (t *Table) Disable(address uint32) error {
	return t.setEnabled(address, false)
}

func (t *Table) setEnabled(address uint32, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bp, ok := t.byAddress[address]
	if !ok {
		return fmt.Errorf("breakpoint: no breakpoint at %#08x", address)
	}

	bp.Enabled = enabled

	return nil
}

// At reports the breakpoint installed at address, if any.
func (t *Table) At(address uint32) (Breakpoint, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	bp, ok := t.byAddress[address]
	if !ok {
		return Breakpoint{}, false
	}

	return *bp, true
}

// All returns a snapshot of every installed breakpoint.
func (t *Table) All() []Breakpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Breakpoint, 0, len(t.byAddress))
	for _, bp := range t.byAddress {
		out = append(out, *bp)
	}

	return out
}

// Replacements returns a copy of the address -> original-instruction
// map a disassembler consults to show pre-breakpoint instructions
// instead of the substituted BKPT opcode.
func (t *Table) Replacements() map[uint32]uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[uint32]uint32, len(t.replacements))
	for addr, original := range t.replacements {
		out[addr] = original
	}

	return out
}

// IsBreakpointOpcode reports whether word is the BKPT instruction this
// package substitutes, for a fetch loop deciding whether a fetched
// word should trigger breakpoint handling rather than execution.
func IsBreakpointOpcode(word uint32) bool {
	return word == bkptOpcode
}

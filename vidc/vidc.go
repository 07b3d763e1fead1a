// Package vidc stubs the VIDC video/sound controller: the real part
// drives a CRT and an audio DAC from DMA fetched by MEMC, neither of
// which is emulated here. This core only accepts and decodes register
// writes so guest code that programs VIDC does not fault or stall.
package vidc

import (
	"log"

	"github.com/lookbusy1344/archemu/addrmap"
)

// Size is the width of VIDC's write-only MMIO window.
const Size = 2 * 1024 * 1024

// RegisterID identifies a VIDC register by the ID bits (24-31) carried
// in every write's value, not by address: VIDC is addressed as a
// single write-only FIFO port repeated across its whole window.
type RegisterID uint8

const (
	VideoPalette      RegisterID = 0x00 // 0x00-0x3C: 16 palette entries
	BorderColour      RegisterID = 0x40
	CursorPalette     RegisterID = 0x44
	StereoImageReg    RegisterID = 0x60
	HorizCycle        RegisterID = 0x80
	HorizSyncWidth    RegisterID = 0x84
	HorizBorderStart  RegisterID = 0x88
	HorizDisplayStart RegisterID = 0x8C
	HorizDisplayEnd   RegisterID = 0x90
	HorizBorderEnd    RegisterID = 0x94
	HorizCursorStart  RegisterID = 0x98
	HorizInterlace    RegisterID = 0x9C
	VertCycle         RegisterID = 0xA0
	VertSyncWidth     RegisterID = 0xA4
	VertBorderStart   RegisterID = 0xA8
	VertDisplayStart  RegisterID = 0xAC
	VertDisplayEnd    RegisterID = 0xB0
	VertBorderEnd     RegisterID = 0xB4
	VertCursorStart   RegisterID = 0xB8
	VertCursorEnd     RegisterID = 0xBC
	SoundFreq         RegisterID = 0xC0
	ControlReg        RegisterID = 0xE0
)

// VIDC is the stub video/sound controller: it decodes and records
// every write but drives no actual display or audio output.
type VIDC struct {
	logger *log.Logger
	last   map[RegisterID]uint32
}

// New constructs a VIDC stub logging unrecognised writes to logger
// (nil disables logging).
func New(logger *log.Logger) *VIDC {
	return &VIDC{logger: logger, last: make(map[RegisterID]uint32)}
}

func (v *VIDC) Name() string             { return "VIDC" }
func (v *VIDC) Type() addrmap.RegionType { return addrmap.MMIO }
func (v *VIDC) Description() string      { return "VIDC video/sound controller (stub)" }
func (v *VIDC) Size() uint32             { return Size }

// Read always returns zero: VIDC is write-only, and guest code that
// reads it reads open bus.
func (v *VIDC) Read(offset uint32) uint32 {
	return 0
}

// Write decodes value's register-ID field (bits 24-31) and records
// it. Unknown register IDs are logged rather than rejected, since a
// real VIDC silently accepts writes to any ID.
func (v *VIDC) Write(offset uint32, value uint32) {
	id := decodeRegisterID(value)
	v.last[id] = value

	if v.logger != nil && !knownRegister(id) {
		v.logger.Printf("vidc: write to unrecognised register %#02x value %#08x", uint8(id), value)
	}
}

func decodeRegisterID(value uint32) RegisterID {
	top := RegisterID(value >> 24)
	if top < 0x40 {
		return VideoPalette
	}

	return top &^ 0x3 // registers are aligned on 4-byte boundaries
}

// LastWrite returns the most recently written value for id, and
// whether it has ever been written.
func (v *VIDC) LastWrite(id RegisterID) (uint32, bool) {
	value, ok := v.last[id]

	return value, ok
}

func knownRegister(id RegisterID) bool {
	switch id {
	case VideoPalette, BorderColour, CursorPalette, StereoImageReg, HorizCycle, HorizSyncWidth,
		HorizBorderStart, HorizDisplayStart, HorizDisplayEnd, HorizBorderEnd,
		HorizCursorStart, HorizInterlace, VertCycle, VertSyncWidth, VertBorderStart,
		VertDisplayStart, VertDisplayEnd, VertBorderEnd, VertCursorStart, VertCursorEnd,
		SoundFreq, ControlReg:
		return true
	default:
		return false
	}
}

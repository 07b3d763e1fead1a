package vidc_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lookbusy1344/archemu/vidc"
)

func TestWriteDecodesKnownRegister(t *testing.T) {
	dev := vidc.New(nil)

	dev.Write(0, uint32(vidc.HorizCycle)<<24|0x1234)

	value, ok := dev.LastWrite(vidc.HorizCycle)
	assert.True(t, ok)
	assert.Equal(t, uint32(vidc.HorizCycle)<<24|0x1234, value)
}

func TestWritePaletteEntryDecodesAsPalette(t *testing.T) {
	dev := vidc.New(nil)

	dev.Write(0, 0x0A000000|0x00FF00FF)

	_, ok := dev.LastWrite(vidc.VideoPalette)
	assert.True(t, ok)
}

func TestUnrecognisedRegisterIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	dev := vidc.New(logger)

	dev.Write(0, 0xD8000000)

	assert.Contains(t, buf.String(), "unrecognised register")
}

func TestKnownRegisterIsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	dev := vidc.New(logger)

	dev.Write(0, uint32(vidc.ControlReg)<<24)

	assert.Empty(t, buf.String())
}

func TestReadIsAlwaysZero(t *testing.T) {
	dev := vidc.New(nil)

	dev.Write(0, uint32(vidc.SoundFreq)<<24|0xFF)
	assert.Zero(t, dev.Read(0))
}

func TestLastWriteReportsUnwrittenRegister(t *testing.T) {
	dev := vidc.New(nil)

	_, ok := dev.LastWrite(vidc.VertCycle)
	assert.False(t, ok)
}

func TestDeviceMetadata(t *testing.T) {
	dev := vidc.New(nil)

	assert.Equal(t, "VIDC", dev.Name())
	assert.Equal(t, uint32(vidc.Size), dev.Size())
}

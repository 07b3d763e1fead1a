package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/archemu/keyboard"
)

type fakeHost struct {
	sent []byte
}

func (f *fakeHost) EnqueueHostByte(b byte) bool {
	f.sent = append(f.sent, b)

	return true
}

func wireController(t *testing.T) (*keyboard.AcornKeyboardController, *fakeHost) {
	t.Helper()

	k := keyboard.New()
	host := &fakeHost{}
	k.SetHostQueue(host)

	return k, host
}

func handshake(k *keyboard.AcornKeyboardController) {
	k.ReceiveFromHost(keyboard.HRST)
	k.ReceiveFromHost(keyboard.RAK1)
	k.ReceiveFromHost(keyboard.RAK2)
}

func TestHandshakeAdvancesToInitialised(t *testing.T) {
	k, host := wireController(t)

	k.ReceiveFromHost(keyboard.HRST)
	require.Equal(t, []byte{keyboard.RAK1}, host.sent)

	k.ReceiveFromHost(keyboard.RAK1)
	require.Equal(t, []byte{keyboard.RAK1, keyboard.RAK2}, host.sent)

	k.ReceiveFromHost(keyboard.RAK2)
	assert.True(t, k.Initialised())
}

func TestProtocolViolationRestartsHandshake(t *testing.T) {
	k, host := wireController(t)

	k.ReceiveFromHost(keyboard.HRST)
	k.ReceiveFromHost(keyboard.RAK1)

	// Wrong byte while awaiting RAK2: must restart, not loop.
	k.ReceiveFromHost(0x00)

	assert.False(t, k.Initialised())
	assert.Equal(t, keyboard.HRST, host.sent[len(host.sent)-1])
}

func TestReceivedRAK1DoesNotReenterItself(t *testing.T) {
	k, host := wireController(t)
	handshake(k)

	require.True(t, k.Initialised())

	// Sending RAK2 again once initialised is a protocol violation, not
	// a no-op re-send of RAK2 (the original's copy-paste bug).
	before := len(host.sent)
	k.ReceiveFromHost(keyboard.RAK2)

	assert.False(t, k.Initialised())
	assert.Greater(t, len(host.sent), before)
}

func TestKeyDownSendsNothingBeforeInitialised(t *testing.T) {
	k, host := wireController(t)

	k.SetKeyMapping([]keyboard.ScanCodeMapping{{HostCode: 30, GuestCode: 1}})
	k.KeyDown(30)

	assert.Empty(t, host.sent)
}

func TestKeyDownSendsMappedScanCodeOnceInitialised(t *testing.T) {
	k, host := wireController(t)
	handshake(k)

	before := len(host.sent)
	k.SetKeyMapping([]keyboard.ScanCodeMapping{{HostCode: 30, GuestCode: 0x12}})
	k.KeyDown(30)

	assert.Len(t, host.sent, before+2)
}

func TestKeyDownIgnoresUnmappedScanCode(t *testing.T) {
	k, host := wireController(t)
	handshake(k)

	before := len(host.sent)
	k.KeyDown(999)

	assert.Len(t, host.sent, before)
}

func TestMouseDeltaClampsToByteRange(t *testing.T) {
	k, host := wireController(t)
	handshake(k)

	before := len(host.sent)
	k.MouseDelta(1000, -1000)

	require.Len(t, host.sent, before+2)
}

func TestHardResetFromInitialisedRestartsHandshake(t *testing.T) {
	k, host := wireController(t)
	handshake(k)

	k.ReceiveFromHost(keyboard.HRST)

	assert.False(t, k.Initialised())
	assert.Equal(t, keyboard.RAK1, host.sent[len(host.sent)-1])
}

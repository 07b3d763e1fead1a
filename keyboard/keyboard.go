// Package keyboard emulates the 87C51 keyboard controller: the small
// state machine that speaks the KART protocol to IOC and translates
// host key/mouse events into guest scan codes.
package keyboard

import (
	"sync"

	"github.com/lookbusy1344/archemu/addrmap"
)

// Protocol bytes, per the KART handshake and data-transaction formats.
const (
	HRST byte = 0xFF
	RAK1 byte = 0xFE
	RAK2 byte = 0xFD

	rqpdBits byte = 0x40
	rqpdMask byte = 0x0F
	pdatBits byte = 0xE0
	rqid     byte = 0x20
	kbidBits byte = 0x80
	kbidMask byte = 0x3F
	kddaBits byte = 0xC0
	kudaBits byte = 0xD0
	rqmp     byte = 0x22
	mdatMask byte = 0x7F
	back     byte = 0x3F
	nack     byte = 0x30
	sack     byte = 0x31
	mack     byte = 0x32
	smak     byte = 0x33
	prst     byte = 0x21
)

// MouseButton identifies a mouse button in host event reports.
type MouseButton uint32

const (
	LeftButton   MouseButton = 1
	MiddleButton MouseButton = 2
	RightButton  MouseButton = 4
)

type controllerState uint8

const (
	statePreReset controllerState = iota
	stateReceivedHRST
	stateReceivedRAK1
	stateInitialised
)

// HostQueue is the IOC-side sink a keyboard controller posts bytes
// into for delivery to the guest down the KART RX path.
type HostQueue interface {
	EnqueueHostByte(b byte) bool
}

// ScanCodeMapping maps one host scan code to a guest scan code.
type ScanCodeMapping struct {
	HostCode  uint32
	GuestCode uint32
}

// AcornKeyboardController represents the 87C51 keyboard/mouse
// controller: translates host key and mouse events into Acorn guest
// scan codes and speaks the KART protocol to IOC.
type AcornKeyboardController struct {
	mu      sync.Mutex
	state   controllerState
	ioc     HostQueue
	scanMap map[uint32]uint32
}

// New constructs a controller with no key mapping and the protocol
// state machine at its pre-reset state, matching the controller's
// power-on condition.
func New() *AcornKeyboardController {
	return &AcornKeyboardController{
		state:   statePreReset,
		scanMap: make(map[uint32]uint32),
	}
}

// Name identifies the device for ConnectionContext lookups.
func (k *AcornKeyboardController) Name() string { return "Keyboard Controller" }

// Connect resolves IOC by name so the controller can send bytes back
// down the KART RX path.
func (k *AcornKeyboardController) Connect(cc *addrmap.ConnectionContext) {
	dev, ok := cc.TryFindDevice("IOC")
	if !ok {
		return
	}

	if hq, ok := dev.(HostQueue); ok {
		k.SetHostQueue(hq)
	}
}

// SetHostQueue wires the sink the controller posts bytes to. Connect
// calls this after resolving IOC by name; it is exported directly so
// a caller assembling devices outside a ConnectionContext (or a test)
// can wire the controller without one.
func (k *AcornKeyboardController) SetHostQueue(q HostQueue) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.ioc = q
}

// ReceiveFromHost processes one byte sent down the KART TX path (IOC
// to keyboard controller). Unlike the original implementation, a
// protocol violation while awaiting RAK2 correctly restarts the
// handshake instead of re-sending RAK2 forever.
func (k *AcornKeyboardController) ReceiveFromHost(b byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.ioc == nil {
		return
	}

	ok := false

	switch k.state {
	case statePreReset:
		if b == HRST {
			k.state = stateReceivedHRST
			k.send(RAK1)
			ok = true
		}
	case stateReceivedHRST:
		if b == RAK1 {
			k.state = stateReceivedRAK1
			k.send(RAK2)
			ok = true
		}
	case stateReceivedRAK1:
		if b == RAK2 {
			k.state = stateInitialised
			ok = true
		}
	case stateInitialised:
		ok = k.receiveInitialised(b)
	}

	if !ok {
		k.state = statePreReset
		k.send(HRST)
	}
}

// receiveInitialised handles protocol bytes once the handshake has
// completed; only HRST (requesting a fresh handshake) changes state.
// BACK, NACK, SACK, MACK, SMAK, RQID, RQMP, PRST and RQPD bytes are
// accepted without further action, since the full request/acknowledge
// protocol for scan-code delivery is outside this core's scope; any
// other byte is reported as a protocol violation.
func (k *AcornKeyboardController) receiveInitialised(b byte) bool {
	switch b {
	case HRST:
		k.state = stateReceivedHRST
		k.send(RAK1)

		return true
	case back, nack, sack, mack, smak, rqid, rqmp, prst:
		return true
	default:
		return b&^rqpdMask == rqpdBits
	}
}

func (k *AcornKeyboardController) send(b byte) {
	if k.ioc != nil {
		k.ioc.EnqueueHostByte(b)
	}
}

// Initialised reports whether the KART handshake has completed,
// chiefly for tests.
func (k *AcornKeyboardController) Initialised() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state == stateInitialised
}

// SetKeyMapping replaces the host-to-guest scan code table.
func (k *AcornKeyboardController) SetKeyMapping(mappings []ScanCodeMapping) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.scanMap = make(map[uint32]uint32, len(mappings))
	for _, m := range mappings {
		k.scanMap[m.HostCode] = m.GuestCode
	}
}

// KeyDown reports a host key press. If the controller is initialised
// and hostScanCode is mapped, two bytes are queued for the guest: a
// key-down-data byte carrying bits 4-7 of the guest code, then a byte
// carrying its bits 0-5.
func (k *AcornKeyboardController) KeyDown(hostScanCode uint32) {
	k.sendScanCode(hostScanCode, kddaBits)
}

// KeyUp reports a host key release.
func (k *AcornKeyboardController) KeyUp(hostScanCode uint32) {
	k.sendScanCode(hostScanCode, kudaBits)
}

func (k *AcornKeyboardController) sendScanCode(hostScanCode uint32, bits byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	guestCode, ok := k.scanMap[hostScanCode]
	if !ok || k.state != stateInitialised {
		return
	}

	k.send(bits | byte(guestCode>>4)&0x0F)
	k.send(kbidBits | byte(guestCode)&kbidMask)
}

func mouseScanCode(button MouseButton) (uint32, bool) {
	switch button {
	case LeftButton, MiddleButton, RightButton:
		return 0, true
	default:
		return 0, false
	}
}

// MouseButtonDown reports a mouse button press.
func (k *AcornKeyboardController) MouseButtonDown(button MouseButton) {
	if code, ok := mouseScanCode(button); ok {
		k.sendScanCode(code, kddaBits)
	}
}

// MouseButtonUp reports a mouse button release.
func (k *AcornKeyboardController) MouseButtonUp(button MouseButton) {
	if code, ok := mouseScanCode(button); ok {
		k.sendScanCode(code, kudaBits)
	}
}

// MouseDelta reports relative mouse movement in mickeys, clamped to
// the 7-bit signed range a single MDAT byte can carry per axis.
func (k *AcornKeyboardController) MouseDelta(deltaX, deltaY int32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state != stateInitialised {
		return
	}

	k.send(pdatBits | clampMdat(deltaX))
	k.send(pdatBits | clampMdat(deltaY))
}

func clampMdat(delta int32) byte {
	if delta > 63 {
		delta = 63
	} else if delta < -64 {
		delta = -64
	}

	return byte(delta) & mdatMask
}

// Package ioc emulates the VL86C410 I/O controller: IRQ/FIRQ
// aggregation, four 16-bit down-counters (one dedicated to the KART
// serial clock), and the two KART byte queues.
package ioc

import (
	"github.com/lookbusy1344/archemu/addrmap"
	"github.com/lookbusy1344/archemu/system"
)

const (
	// Size is the width of IOC's MMIO window.
	Size = 128

	timer0IRQ = 5
	timer1IRQ = 6
	kartRxIRQ = 15
	kartTxIRQ = 14
	porIRQ    = irqBitPOR
)

// KeyboardSink receives KART TX bytes transmitted by the host.
type KeyboardSink interface {
	ReceiveFromHost(b byte)
}

// IOC is the interrupt/timer/KART controller, exposed as an MMIO
// region in MEMC's address maps.
type IOC struct {
	sys   *system.Context
	state IrqState

	counters   [3]counter
	kart       kartCounter
	kartRxByte uint8
	rxQueue    *byteQueue
	txQueue    *byteQueue
	keyboard   KeyboardSink
}

// New constructs an IOC sharing sys's clock and scheduling its
// counters on it. rxQueueCap/txQueueCap size the KART byte queues.
func New(sys *system.Context, rxQueueCap, txQueueCap int) *IOC {
	ioc := &IOC{
		sys:     sys,
		rxQueue: newByteQueue(rxQueueCap),
		txQueue: newByteQueue(txQueueCap),
	}

	ticksPerCount := sys.MasterClockFrequency() / countFrequencyHz

	ioc.counters[0].init(0, ticksPerCount, ioc.onCounterFire)
	ioc.counters[1].init(1, ticksPerCount, ioc.onCounterFire)
	ioc.counters[2].init(2, ticksPerCount, ioc.onCounterFire)
	ioc.kart.init(ticksPerCount, ioc.onKartCounterFire)

	ioc.powerOnReset()

	return ioc
}

func (d *IOC) powerOnReset() {
	d.state.RaiseIrq(porIRQ)
}

// Name identifies the device for ConnectionContext lookups.
func (d *IOC) Name() string { return "IOC" }

// Connect resolves the keyboard controller by name so the KART TX
// counter can deliver bytes to it.
func (d *IOC) Connect(cc *addrmap.ConnectionContext) {
	dev, ok := cc.TryFindDevice("Keyboard Controller")
	if !ok {
		return
	}

	if sink, ok := dev.(KeyboardSink); ok {
		d.keyboard = sink
	}
}

// Type implements addrmap.Region.
func (d *IOC) Type() addrmap.RegionType { return addrmap.MMIO }

// Description implements addrmap.Region.
func (d *IOC) Description() string { return "VL86C410 I/O controller" }

// Size implements addrmap.Region.
func (d *IOC) Size() uint32 { return Size }

func (d *IOC) onCounterFire(ctx *system.Context, index int) {
	switch index {
	case 0:
		d.state.RaiseIrq(timer0IRQ)
	case 1:
		d.state.RaiseIrq(timer1IRQ)
	case 2:
		// Counter 2 has no assigned interrupt.
	}
}

func (d *IOC) onKartCounterFire(ctx *system.Context, _ int) {
	if b, ok := d.rxQueue.Dequeue(); ok {
		d.kartRxByte = b
		d.state.RaiseIrq(kartRxIRQ)
	}

	if b, ok := d.txQueue.Dequeue(); ok {
		if d.keyboard != nil {
			d.keyboard.ReceiveFromHost(b)
		}

		d.state.RaiseIrq(kartTxIRQ)
	}
}

// SetInterruptLow drives external interrupt line ilNo.
func (d *IOC) SetInterruptLow(ilNo uint8, state bool) {
	d.state.SetInterruptLow(ilNo, state)
}

// SetControlPinInput drives control pin ctrlLine from an external
// device (keyboard handshake lines land here).
func (d *IOC) SetControlPinInput(ctrlLine uint8, state bool) {
	d.state.SetControlPinInputState(ctrlLine, state)
}

// IrqPinState reports the aggregated IRQ line to the CPU.
func (d *IOC) IrqPinState() bool { return d.state.IrqPinState() }

// FirqPinState reports the aggregated FIRQ line to the CPU.
func (d *IOC) FirqPinState() bool { return d.state.FirqPinState() }

// EnqueueHostByte is called by the host input thread to feed a byte
// into the KART RX queue; it reports false if the queue was full.
func (d *IOC) EnqueueHostByte(b byte) bool {
	return d.rxQueue.Enqueue(b)
}

// WriteKartByte queues value for transmission to the keyboard
// controller via the KART TX path.
func (d *IOC) WriteKartByte(value byte) {
	d.txQueue.Enqueue(value)
}

// Register offsets, byte addresses into the 128-byte MMIO window.
// Every register is logically 8-bit but occupies a 4-byte-aligned
// slot where only the low byte is significant.
const (
	regCtrl       = 0x00
	regKartData   = 0x04
	regIrqStatusA = 0x10
	regIrqReqA    = 0x14 // R: masked status A; W: clear A
	regIrqMaskA   = 0x18
	regIrqStatusB = 0x20
	regIrqReqB    = 0x24
	regIrqMaskB   = 0x28
	regFirqStatus = 0x30
	regFirqReq    = 0x34
	regFirqMask   = 0x38

	timer0Base = 0x40
	timer1Base = 0x50
	timer2Base = 0x60
	kartBase   = 0x70

	counterRegLow   = 0x0
	counterRegHigh  = 0x4
	counterRegGo    = 0x8
	counterRegLatch = 0xC
	counterSpan     = 0x10
)

// Read implements addrmap.MMIORegion. offset is word-aligned; only
// the bottom byte of the returned word is significant for byte-wide
// registers.
func (d *IOC) Read(offset uint32) uint32 {
	switch {
	case offset == regCtrl:
		return uint32(d.state.ReadCtrlRegister())
	case offset == regKartData:
		return uint32(d.kartRxByte)
	case offset == regIrqStatusA:
		return uint32(d.state.UnmaskedIrqState() & 0xFF)
	case offset == regIrqReqA:
		return uint32(d.state.MaskedIrqState() & 0xFF)
	case offset == regIrqMaskA:
		return uint32(d.state.IrqMask() & 0xFF)
	case offset == regIrqStatusB:
		return uint32(d.state.UnmaskedIrqState() >> 8)
	case offset == regIrqReqB:
		return uint32(d.state.MaskedIrqState() >> 8)
	case offset == regIrqMaskB:
		return uint32(d.state.IrqMask() >> 8)
	case offset == regFirqStatus:
		return uint32(d.state.UnmaskedFirqState())
	case offset == regFirqReq:
		return uint32(d.state.MaskedFirqState())
	case offset == regFirqMask:
		return uint32(d.state.FirqMask())
	case isCounterOffset(offset):
		return d.readCounterRegister(offset)
	default:
		return 0
	}
}

// Write implements addrmap.MMIORegion.
func (d *IOC) Write(offset uint32, value uint32) {
	switch {
	case offset == regCtrl:
		d.state.WriteCtrlRegister(uint8(value))
	case offset == regKartData:
		d.WriteKartByte(uint8(value))
	case offset == regIrqReqA:
		d.state.ClearIrqs(uint8(value))
	case offset == regIrqMaskA:
		d.state.SetIrqMaskLow(uint8(value))
	case offset == regIrqMaskB:
		d.state.SetIrqMaskHigh(uint8(value))
	case offset == regFirqMask:
		d.state.SetFirqMask(uint8(value))
	case isCounterOffset(offset):
		d.writeCounterRegister(offset, uint8(value))
	}
}

func isCounterOffset(offset uint32) bool {
	return offset >= timer0Base && offset < kartBase+counterSpan
}

func (d *IOC) counterAt(index int) *counter {
	if index == 3 {
		return &d.kart.counter
	}

	return &d.counters[index]
}

func counterIndexAndReg(offset uint32) (int, uint32) {
	base := offset - timer0Base
	index := int(base / counterSpan)
	reg := base % counterSpan

	return index, reg
}

func (d *IOC) readCounterRegister(offset uint32) uint32 {
	index, reg := counterIndexAndReg(offset)
	c := d.counterAt(index)

	switch reg {
	case counterRegLatch:
		return uint32(c.Latch(d.sys))
	case counterRegHigh:
		return uint32(c.ReadCount() >> 8)
	default:
		return uint32(c.ReadCount())
	}
}

func (d *IOC) writeCounterRegister(offset uint32, value uint8) {
	index, reg := counterIndexAndReg(offset)
	c := d.counterAt(index)

	switch reg {
	case counterRegLow:
		c.WriteLatchLow(value)
	case counterRegHigh:
		c.WriteLatchHigh(value)
	case counterRegGo:
		c.Go(d.sys)
	case counterRegLatch:
		c.Latch(d.sys)
	}
}

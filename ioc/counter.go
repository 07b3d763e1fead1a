package ioc

import "github.com/lookbusy1344/archemu/system"

// countFrequencyHz is the emulated tick rate of all four down-counters.
const countFrequencyHz = 2_000_000

// kartTicksPerByte is the KART-clock counter's multiplier: 11
// bits/frame (start, 8 data, parity, stop) x 16 ticks/bit.
const kartTicksPerByte = 176

// counterFireFunc is invoked when a counter reaches zero, with its
// index (0-3) as the token.
type counterFireFunc func(ctx *system.Context, index int)

// counter is one of IOC's four 16-bit down-counters. A counter that
// has never received a "go" command (inputLatch == 0, never started)
// is inactive and does not reload.
type counter struct {
	task              system.Task
	index             int
	masterTicksPerTick uint64
	startTime          uint64
	inputLatch         uint16
	outputLatch        uint16
	started            bool
	onFire             counterFireFunc
}

func (c *counter) init(index int, ticksPerCount uint64, onFire counterFireFunc) {
	c.index = index
	c.masterTicksPerTick = ticksPerCount
	c.onFire = onFire
}

// IsActive reports whether the counter has ever been started.
func (c *counter) IsActive() bool {
	return c.started
}

// WriteLatchLow sets bits 0-7 of the input latch.
func (c *counter) WriteLatchLow(low uint8) {
	c.inputLatch = (c.inputLatch &^ 0xFF) | uint16(low)
}

// WriteLatchHigh sets bits 8-15 of the input latch.
func (c *counter) WriteLatchHigh(high uint8) {
	c.inputLatch = (c.inputLatch &^ 0xFF00) | uint16(high)<<8
}

// Go restarts the counter from the input latch and schedules its
// expiry callback.
func (c *counter) Go(ctx *system.Context) {
	if c.inputLatch == 0 {
		return
	}

	c.started = true
	c.startTime = ctx.MasterClockTicks()

	c.schedule(ctx)
}

func (c *counter) schedule(ctx *system.Context) {
	interval := c.masterTicksPerTick * uint64(c.inputLatch)
	at := c.startTime + interval

	ctx.ScheduleTask(&c.task, at, uintptr(c.index), func(ctx *system.Context, token uintptr) {
		c.startTime = ctx.MasterClockTicks()
		c.onFire(ctx, int(token))
		c.schedule(ctx)
	})
}

// ReadCount returns the value held in the output latch by the last
// Latch call; it does not sample the live countdown.
func (c *counter) ReadCount() uint16 {
	return c.Latch(nil)
}

// Latch freezes the counter's current countdown value into the output
// latch and returns it. If ctx is nil the last-latched value is
// returned unchanged (used for a plain register read).
func (c *counter) Latch(ctx *system.Context) uint16 {
	if ctx == nil || !c.started {
		return c.outputLatch
	}

	elapsed := ctx.MasterClockTicks() - c.startTime
	ticksElapsed := elapsed / c.masterTicksPerTick
	remaining := uint64(c.inputLatch)

	if ticksElapsed < remaining {
		remaining -= ticksElapsed
	} else {
		remaining = 0
	}

	c.outputLatch = uint16(remaining)

	return c.outputLatch
}

// kartCounter is counter 3: identical to the regular counters except
// its schedule factor represents one whole KART byte instead of one
// raw tick.
type kartCounter struct {
	counter
}

func (c *kartCounter) init(ticksPerCount uint64, onFire counterFireFunc) {
	c.counter.init(3, ticksPerCount*kartTicksPerByte, onFire)
}

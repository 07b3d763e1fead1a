package addrmap

import "github.com/lookbusy1344/archemu/system"

// Device is implemented by any hardware component that can be looked
// up by name during start-up wiring (e.g. IOC resolving the keyboard
// controller).
type Device interface {
	Name() string
}

// ConnectionContext is constructed once at start-up and passed to
// every device's Connect method. It is discarded once start-up
// completes; nothing retains a reference to it afterwards.
type ConnectionContext struct {
	System     *system.Context
	ReadMap    *AddressMap
	WriteMap   *AddressMap
	devices    map[string]Device
}

// NewConnectionContext builds an empty connection context over the
// given system and address maps.
func NewConnectionContext(sys *system.Context, readMap, writeMap *AddressMap) *ConnectionContext {
	return &ConnectionContext{
		System:   sys,
		ReadMap:  readMap,
		WriteMap: writeMap,
		devices:  make(map[string]Device),
	}
}

// RegisterDevice makes dev discoverable by name via TryFindDevice.
func (c *ConnectionContext) RegisterDevice(dev Device) {
	c.devices[dev.Name()] = dev
}

// TryFindDevice resolves a previously registered device by name.
func (c *ConnectionContext) TryFindDevice(name string) (Device, bool) {
	dev, ok := c.devices[name]

	return dev, ok
}

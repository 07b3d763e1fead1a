// Package addrmap indexes hardware regions by the guest address range
// they occupy, and resolves devices to one another by name during
// system start-up.
package addrmap

import (
	"fmt"
	"sort"
)

// RegionType identifies which Region interface a mapping implements,
// avoiding a runtime type assertion on every access.
type RegionType uint8

const (
	HostBlock RegionType = iota
	MMIO
)

// Region is implemented by anything that can be mapped into a guest
// address range.
type Region interface {
	Type() RegionType
	Name() string
	Description() string
	Size() uint32
}

// HostBlockRegion is a block of host memory (RAM or ROM) mapped
// directly into the guest address space.
type HostBlockRegion interface {
	Region
	Bytes() []byte
}

// MMIORegion is a device that intercepts reads and writes to its
// address range; offset is word-aligned and relative to the region's
// base address.
type MMIORegion interface {
	Region
	Read(offset uint32) uint32
	Write(offset uint32, value uint32)
}

// Mapping records one region's placement in the address space.
type Mapping struct {
	Region  Region
	Address uint32
	End     uint32 // exclusive
}

func (m Mapping) overlaps(other Mapping) bool {
	return m.Address < other.End && other.Address < m.End
}

// AddressMap indexes a set of non-overlapping Mappings sorted by base
// address, supporting O(log n) lookup by guest address.
type AddressMap struct {
	mappings []Mapping
}

// Mappings returns the sorted mapping list. The returned slice must
// not be modified.
func (m *AddressMap) Mappings() []Mapping {
	return m.mappings
}

// Clear removes all mappings.
func (m *AddressMap) Clear() {
	m.mappings = nil
}

// TryInsert adds region at baseAddress..baseAddress+region.Size(),
// reporting false if it overlaps an existing mapping.
func (m *AddressMap) TryInsert(baseAddress uint32, region Region) bool {
	candidate := Mapping{Region: region, Address: baseAddress, End: baseAddress + region.Size()}

	i := sort.Search(len(m.mappings), func(i int) bool {
		return m.mappings[i].Address >= candidate.Address
	})

	if i > 0 && m.mappings[i-1].overlaps(candidate) {
		return false
	}

	if i < len(m.mappings) && m.mappings[i].overlaps(candidate) {
		return false
	}

	m.mappings = append(m.mappings, Mapping{})
	copy(m.mappings[i+1:], m.mappings[i:])
	m.mappings[i] = candidate

	return true
}

// TryFindRegion locates the mapping covering address, returning the
// region, the offset of address within it, and the number of bytes
// remaining to the end of the mapping.
func (m *AddressMap) TryFindRegion(address uint32) (region Region, offset uint32, remaining uint32, ok bool) {
	i := sort.Search(len(m.mappings), func(i int) bool {
		return m.mappings[i].End > address
	})

	if i == len(m.mappings) || m.mappings[i].Address > address {
		return nil, 0, 0, false
	}

	mapping := m.mappings[i]

	return mapping.Region, address - mapping.Address, mapping.End - address, true
}

// String renders the map for diagnostic logging.
func (m *AddressMap) String() string {
	out := ""

	for _, mapping := range m.mappings {
		out += fmt.Sprintf("%08X-%08X %s\n", mapping.Address, mapping.End-1, mapping.Region.Name())
	}

	return out
}

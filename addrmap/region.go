package addrmap

// GenericHostBlock maps a fixed slice of host memory into the guest
// address space: RAM or one of the ROM images.
type GenericHostBlock struct {
	name string
	desc string
	data []byte
}

// NewGenericHostBlock wraps data (owned by the caller) as a host
// block region.
func NewGenericHostBlock(name, description string, data []byte) *GenericHostBlock {
	return &GenericHostBlock{name: name, desc: description, data: data}
}

func (b *GenericHostBlock) Type() RegionType   { return HostBlock }
func (b *GenericHostBlock) Name() string       { return b.name }
func (b *GenericHostBlock) Description() string { return b.desc }
func (b *GenericHostBlock) Size() uint32       { return uint32(len(b.data)) }
func (b *GenericHostBlock) Bytes() []byte      { return b.data }

// Package spiflash provides cycle-accurate models of a SPI-NOR flash device,
// one reading the device byte by byte and one speaking the bit-serial wire
// protocol, both backed by the same immutable image.
package spiflash

import (
	"fmt"
	"os"
)

// DefaultFill is the byte returned for reads outside the image window.
const DefaultFill = 0xFF

// An Image is the content of a flash device mapped at a base address. The
// addresses in the range of [base, base+len) form the image window. Reads
// outside the window return the fill byte. An Image never changes after
// creation, so models may share one without synchronization.
type Image struct {
	base uint32
	data []byte
	fill byte
}

// NewImage creates an image holding a copy of the content, mapped at the
// given base address, with the fill byte 0xFF.
func NewImage(base uint32, content []byte) *Image {
	return NewImageWithFill(base, content, DefaultFill)
}

// NewImageWithFill creates an image holding a copy of the content, mapped at
// the given base address, returning the given fill byte outside the window.
func NewImageWithFill(base uint32, content []byte, fill byte) *Image {
	data := make([]byte, len(content))
	copy(data, content)

	return &Image{
		base: base,
		data: data,
		fill: fill,
	}
}

// LoadImageFile creates an image from the content of a binary file.
func LoadImageFile(path string, base uint32) (*Image, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load flash image: %w", err)
	}

	return NewImage(base, content), nil
}

// Base returns the lowest address of the image window.
func (i *Image) Base() uint32 {
	return i.base
}

// Len returns the number of bytes in the image.
func (i *Image) Len() int {
	return len(i.data)
}

// End returns the first address above the image window.
func (i *Image) End() uint32 {
	return uint32(uint64(i.base) + uint64(len(i.data)))
}

// Contains returns true if the address lies in the image window.
func (i *Image) Contains(addr uint32) bool {
	return addr >= i.base && uint64(addr) < uint64(i.base)+uint64(len(i.data))
}

// Byte returns the byte at the given address, or the fill byte if the
// address lies outside the image window.
func (i *Image) Byte(addr uint32) byte {
	if !i.Contains(addr) {
		return i.fill
	}

	return i.data[addr-i.base]
}

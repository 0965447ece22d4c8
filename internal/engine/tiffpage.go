// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"encoding/binary"
	"fmt"
)

// maxTIFFPages bounds the IFD chain walk against corrupt or cyclic files.
const maxTIFFPages = 10000

// tiffByteOrder reads the byte order mark from a TIFF header.
func tiffByteOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("truncated TIFF header")
	}
	switch {
	case data[0] == 'I' && data[1] == 'I':
		return binary.LittleEndian, nil
	case data[0] == 'M' && data[1] == 'M':
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("not a TIFF file")
}

// tiffPageOffsets walks the IFD chain of a TIFF file and returns the file
// offset of every image directory. Multi-page TIFFs store one directory
// per page, linked by a next-directory pointer after the entry table.
func tiffPageOffsets(data []byte) ([]uint32, error) {
	order, err := tiffByteOrder(data)
	if err != nil {
		return nil, err
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("bad TIFF magic")
	}

	var offsets []uint32
	next := order.Uint32(data[4:8])
	for next != 0 {
		if len(offsets) >= maxTIFFPages {
			return nil, fmt.Errorf("IFD chain exceeds %d pages", maxTIFFPages)
		}
		if int(next)+2 > len(data) {
			return nil, fmt.Errorf("IFD offset %d beyond file end", next)
		}
		offsets = append(offsets, next)

		count := order.Uint16(data[next : next+2])
		tail := int(next) + 2 + 12*int(count)
		if tail+4 > len(data) {
			return nil, fmt.Errorf("IFD at offset %d is truncated", next)
		}
		next = order.Uint32(data[tail : tail+4])
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("TIFF file has no image directories")
	}
	return offsets, nil
}

// tiffPage returns a copy of the file with the header's first-directory
// pointer redirected to the directory at offset. Every other offset in the
// file is absolute, so the standard single-page decoder then decodes
// exactly that page.
func tiffPage(data []byte, offset uint32) []byte {
	page := make([]byte, len(data))
	copy(page, data)
	order, _ := tiffByteOrder(page)
	order.PutUint32(page[4:8], offset)
	return page
}

package bplist

import "encoding/binary"

const (
	magic       = "bplist00"
	trailerSize = 32
	headerSize  = 8
	maxDepth    = 512 // spec.md §4.2 suggested recursion depth cap
	maxUIDWidth = 8   // spec.md §9: clamp UID width to {1,2,4,8}
)

// trailer is the fixed 32-byte footer. Field order and widths match the
// wire layout exactly (spec.md §3): 6 bytes padding, offset_size, ref_size,
// num_objects, top_object, offset_table_offset. Fields must stay exported:
// encoding/binary reads struct layout via reflection and can't see into
// unexported (or blank) fields.
type trailer struct {
	Padding           [6]uint8
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// minimumWidthForUint returns the smallest width in {1,2,4,8} that can hold
// n without truncation.
func minimumWidthForUint(n uint64) int {
	switch {
	case n <= 0xff:
		return 1
	case n <= 0xffff:
		return 2
	case n <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// isValidWidth reports whether w is one of the widths the wire format
// permits for offset_size/ref_size (spec.md §3 invariant).
func isValidWidth(w uint8) bool {
	switch w {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

// unpackUint reads a big-endian unsigned integer of the given width
// (1/2/4/8 bytes) and zero-extends it to 64 bits (spec.md §4.1).
func unpackUint(width int, b []byte) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	panic(newErr(UnknownTag, "integer width %d is not one of {1,2,4,8}", width))
}

// packUint writes n big-endian into a width-byte (1/2/4/8) field.
func packUint(dst []byte, n uint64, width int) {
	switch width {
	case 1:
		dst[0] = uint8(n)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(n))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(n))
	case 8:
		binary.BigEndian.PutUint64(dst, n)
	default:
		panic("bplist: illegal integer width")
	}
}

// unpackInt reads the payload of an int object: widths 1/2/4 are
// zero-extended (bplist ints <= 32 bits are unsigned on the wire), width 8
// is the raw bit pattern reinterpreted as signed (spec.md §4.1, §9 —
// "preserve it").
func unpackInt(width int, b []byte) int64 {
	if width == 8 {
		return int64(binary.BigEndian.Uint64(b))
	}
	return int64(unpackUint(width, b))
}

// intWidthFor returns the wire width (in bytes) pack_int would choose for
// v, and the corresponding marker low nibble (log2(width)).
//
// Selection rule (spec.md §4.1): any bit set in the high 32 bits of v
// reinterpreted as u64 — including every negative value — forces 8 bytes;
// otherwise the smallest of 4/2/1 bytes that covers it.
func intWidthFor(v int64) (width int, nibble uint8) {
	u := uint64(v)
	if u>>32 != 0 {
		return 8, 0x3
	}
	switch {
	case u <= 0xff:
		return 1, 0x0
	case u <= 0xffff:
		return 2, 0x1
	default:
		return 4, 0x2
	}
}

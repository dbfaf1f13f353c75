package bplist

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/bplist00/bplist/cf"
	"github.com/bplist00/bplist/internal/diag"
)

// Parse decodes a bplist00 byte buffer into a tree of Go values drawn from
// the closed union this package defines (bool, int64, float64, Date, UID,
// []byte, string, []interface{}, *Dict).
func Parse(data []byte) (interface{}, error) {
	return ParseTrace(data, nil)
}

// ParseTrace is Parse with an optional diagnostic hook.
func ParseTrace(data []byte, tr *diag.Tracer) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				v, err = nil, e
				return
			}
			panic(r)
		}
	}()

	if len(data) < headerSize+trailerSize {
		panic(newErr(Truncated, "file is %d bytes, need at least %d", len(data), headerSize+trailerSize))
	}
	if !bytes.Equal(data[:headerSize], []byte(magic)) {
		panic(newErr(InvalidHeader, "first 8 bytes are %q, want %q", data[:headerSize], magic))
	}

	var tl trailer
	if err := binary.Read(bytes.NewReader(data[len(data)-trailerSize:]), binary.BigEndian, &tl); err != nil {
		panic(wrapErr(MalformedTrailer, err, "reading trailer"))
	}

	if !isValidWidth(tl.OffsetIntSize) {
		panic(newErr(MalformedTrailer, "offset_size %d is not one of {1,2,4,8}", tl.OffsetIntSize))
	}
	if !isValidWidth(tl.ObjectRefSize) {
		panic(newErr(MalformedTrailer, "ref_size %d is not one of {1,2,4,8}", tl.ObjectRefSize))
	}

	fileLen := uint64(len(data))
	trailerStart := fileLen - trailerSize

	// Bound NumObjects against the file size before using it in any
	// arithmetic below: each offset table entry is at least 1 byte, so a
	// count claiming more objects than there are bytes before the trailer
	// is already impossible. Checking this first keeps the next line's
	// multiplication (entries * offset_size) from wrapping around in
	// uint64 and silently passing the bounds check on a crafted trailer
	// (teacher: _examples/DHowett-go-plist/bplist_parser.go's NumObjects
	// guard ahead of its offset-table read).
	if tl.NumObjects > trailerStart {
		panic(newErr(Truncated, "num_objects %d exceeds %d bytes available before the trailer", tl.NumObjects, trailerStart))
	}
	if tl.OffsetTableOffset+tl.NumObjects*uint64(tl.OffsetIntSize) > trailerStart {
		panic(newErr(Truncated, "offset table (at 0x%x, %d entries of %d bytes) runs past the trailer at 0x%x",
			tl.OffsetTableOffset, tl.NumObjects, tl.OffsetIntSize, trailerStart))
	}
	if tl.OffsetTableOffset < headerSize || tl.OffsetTableOffset >= trailerStart {
		panic(newErr(MalformedTrailer, "offset table at 0x%x is outside the object region", tl.OffsetTableOffset))
	}
	if tl.TopObject >= tl.NumObjects {
		panic(newErr(OutOfBounds, "top_object %d is out of range (%d objects)", tl.TopObject, tl.NumObjects))
	}

	tr.Debugf("parse: num_objects=%d, offset_size=%d, ref_size=%d, top=%d",
		tl.NumObjects, tl.OffsetIntSize, tl.ObjectRefSize, tl.TopObject)

	p := &parserState{
		data:        data,
		dataEnd:     int(tl.OffsetTableOffset),
		offsetSize:  int(tl.OffsetIntSize),
		refSize:     int(tl.ObjectRefSize),
		objectCount: tl.NumObjects,
		tr:          tr,
	}

	p.offsetTable = make([]uint64, tl.NumObjects)
	cursor := int(tl.OffsetTableOffset)
	for i := uint64(0); i < tl.NumObjects; i++ {
		off := unpackUint(p.offsetSize, data[cursor:cursor+p.offsetSize])
		cursor += p.offsetSize
		if off < headerSize || off >= tl.OffsetTableOffset {
			panic(newErr(OutOfBounds, "object #%d offset 0x%x is outside [0x%x, 0x%x)", i, off, headerSize, tl.OffsetTableOffset))
		}
		p.offsetTable[i] = off
	}

	return p.parseAtIndex(tl.TopObject, 0), nil
}

// parserState is a bounded, read-only view of the input plus the offset
// table and widths described in spec.md §4.2. It never copies the input
// buffer; parsed strings/data own freshly allocated bytes (spec.md §1:
// "parsed strings/data own their bytes").
type parserState struct {
	data        []byte
	dataEnd     int
	refSize     int
	offsetSize  int
	objectCount uint64
	offsetTable []uint64
	tr          *diag.Tracer
}

// parseAtIndex dereferences the offset table and decodes the object found
// there. The reference implementation this spec is grounded on does not
// memoize by index (spec.md §4.2 "Cycle handling"), so a ref visited twice
// in a tree is parsed twice; only the recursion depth cap bounds a cyclic
// or pathologically deep input.
func (p *parserState) parseAtIndex(index uint64, depth int) interface{} {
	if depth > maxDepth {
		panic(newErr(DepthExceeded, "parse recursion exceeded %d levels", maxDepth))
	}
	if index >= p.objectCount {
		panic(newErr(OutOfBounds, "reference to object #%d, only %d objects exist", index, p.objectCount))
	}

	off := p.offsetTable[index]
	return p.parseAtOffset(int(off), depth)
}

func (p *parserState) parseAtOffset(off int, depth int) interface{} {
	if off < headerSize || off >= p.dataEnd {
		panic(newErr(OutOfBounds, "object offset 0x%x is outside [0x%x, 0x%x)", off, headerSize, p.dataEnd))
	}

	marker := p.data[off]
	p.tr.Debugf("parse: object at 0x%x is %s (marker 0x%02x)", off, tagName(marker), marker)

	switch highNibble(marker) {
	case tagPrimitive:
		switch marker {
		case tagBoolFalse:
			return false
		case tagBoolTrue:
			return true
		}
		panic(newErr(UnknownTag, "unassigned %s marker 0x%02x at 0x%x", tagName(marker), marker, off))

	case tagInt:
		width := 1 << lowNibble(marker)
		b := p.readBytes(off+1, width, "int")
		return unpackInt(width, b)

	case tagReal:
		switch marker {
		case tagRealSingle:
			b := p.readBytes(off+1, 4, "real")
			return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		case tagRealDouble:
			b := p.readBytes(off+1, 8, "real")
			return math.Float64frombits(binary.BigEndian.Uint64(b))
		}
		panic(newErr(UnknownTag, "unassigned %s width marker 0x%02x at 0x%x", tagName(marker), marker, off))

	case tagDateHigh:
		if marker != tagDate {
			panic(newErr(UnknownTag, "unassigned %s marker 0x%02x at 0x%x", tagName(marker), marker, off))
		}
		b := p.readBytes(off+1, 8, "date")
		bits := math.Float64frombits(binary.BigEndian.Uint64(b))
		return cf.DateFromAppleSeconds(bits)

	case tagData:
		cnt, next := p.readCount(marker, off)
		b := p.readBytes(next, int(cnt), "data")
		out := make([]byte, len(b))
		copy(out, b)
		return out

	case tagASCII:
		cnt, next := p.readCount(marker, off)
		b := p.readBytes(next, int(cnt), "ascii string")
		return string(b)

	case tagUTF16:
		cnt, next := p.readCount(marker, off)
		b := p.readBytes(next, int(cnt)*2, "utf16 string")
		units := make([]uint16, cnt)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[i*2:])
		}
		return string(utf16.Decode(units))

	case tagUID:
		width := int(lowNibble(marker)) + 1
		if width > maxUIDWidth || (width&(width-1)) != 0 {
			panic(newErr(UnknownTag, "%s width %d bytes is not supported", tagName(marker), width))
		}
		b := p.readBytes(off+1, width, "uid")
		return cf.UID(unpackUint(width, b))

	case tagArray:
		cnt, next := p.readCount(marker, off)
		p.validateRefRegion(off, next, cnt, "array")
		refs := p.readRefs(next, int(cnt))
		arr := make([]interface{}, cnt)
		for i, r := range refs {
			arr[i] = p.parseAtIndex(r, depth+1)
		}
		return arr

	case tagDict:
		cnt, next := p.readCount(marker, off)
		p.validateRefRegion(off, next, cnt*2, "dict")
		refs := p.readRefs(next, int(cnt*2))
		d := cf.NewDict()
		for i := uint64(0); i < cnt; i++ {
			k := p.parseAtIndex(refs[i], depth+1)
			v := p.parseAtIndex(refs[cnt+i], depth+1)
			d.Keys = append(d.Keys, k)
			d.Values = append(d.Values, v)
		}
		return d
	}

	panic(newErr(UnknownTag, "unexpected %s marker 0x%02x at offset 0x%x", tagName(marker), marker, off))
}

// readCount decodes the inline-or-long-form length prefix (spec.md §3:
// "The inline length L either directly gives the count ... or, when L ==
// 0x0F, is followed by a fully-encoded int object"). It returns the count
// and the byte offset immediately after the length prefix.
func (p *parserState) readCount(marker uint8, off int) (uint64, int) {
	n := lowNibble(marker)
	if n != 0x0F {
		return uint64(n), off + 1
	}

	intMarker := p.readBytes(off+1, 1, "length prefix")[0]
	if highNibble(intMarker) != tagInt {
		panic(newErr(UnknownTag, "length prefix at 0x%x is a %s object, not an int", off+1, tagName(intMarker)))
	}
	width := 1 << lowNibble(intMarker)
	b := p.readBytes(off+2, width, "length prefix")
	cnt := unpackUint(width, b)
	if cnt > uint64(p.dataEnd) {
		panic(newErr(Truncated, "length %d at 0x%x exceeds the %d-byte object region", cnt, off, p.dataEnd))
	}
	return cnt, off + 2 + width
}

// readBytes slices n bytes starting at off, checked against dataEnd.
// Tightened to "<=" rather than the reference implementation's strict "<"
// (spec.md §9 open question: "Tighten to <= in a new implementation" —
// this rejects objects that exactly fill remaining space under the
// reference's rule but are in fact valid).
func (p *parserState) readBytes(off int, n int, what string) []byte {
	if off < 0 || n < 0 || off+n > p.dataEnd {
		panic(newErr(Truncated, "%s at 0x%x needs %d bytes, only %d available before 0x%x", what, off, n, p.dataEnd-off, p.dataEnd))
	}
	return p.data[off : off+n]
}

func (p *parserState) readRefs(off int, n int) []uint64 {
	refs := make([]uint64, n)
	b := p.readBytes(off, n*p.refSize, "reference list")
	for i := range refs {
		refs[i] = unpackUint(p.refSize, b[i*p.refSize:(i+1)*p.refSize])
	}
	return refs
}

// validateRefRegion checks that a container's count*ref_size reference list
// fits before the offset table, before any of it is read, so a single
// oversized count fails fast. The per-reference "ref < num_objects" bound is
// checked separately by parseAtIndex.
func (p *parserState) validateRefRegion(objOff, listOff int, count uint64, context string) {
	if uint64(listOff)+count*uint64(p.refSize) > uint64(p.dataEnd) {
		panic(newErr(OutOfBounds, "%s at 0x%x has %d entries, runs past the offset table at 0x%x", context, objOff, count, p.dataEnd))
	}
}

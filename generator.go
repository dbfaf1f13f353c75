package bplist

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/bplist00/bplist/cf"
	"github.com/bplist00/bplist/internal/diag"
)

// Generate serializes v into a bplist00 byte buffer bit-compatible with
// CoreFoundation's CFBinaryPList.
//
// v must be built from the closed value union this package defines: bool,
// any Go integer kind, float32/float64, Date, UID, []byte, string,
// []interface{}, *Dict. Anything else fails with Unsupported.
func Generate(v interface{}) ([]byte, error) {
	return GenerateTrace(v, nil)
}

// GenerateTrace is Generate with an optional diagnostic hook; cmd/bplutil's
// -v flag uses this to report chosen width classes. The package always
// imports internal/diag (and through it zerolog), but nothing is logged
// unless a non-nil Tracer is passed.
func GenerateTrace(v interface{}, tr *diag.Tracer) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				out, err = nil, e
				return
			}
			panic(r)
		}
	}()

	count := countObjects(v, 0)
	refSize := 1
	if count > 1 {
		refSize = minimumWidthForUint(uint64(count - 1))
	}
	tr.Debugf("generate: %d objects, ref_size=%d", count, refSize)

	g := &generatorState{
		refSize: refSize,
		offsets: make([]uint64, 0, count),
	}
	g.buf = append(g.buf, []byte(magic)...)

	root := g.emit(v, 0)

	objectsLength := uint64(len(g.buf))
	if objectsLength > math.MaxUint32 {
		panic(newErr(TooLarge, "object region is %d bytes, exceeds 2^32-1", objectsLength))
	}

	offsetSize := minimumWidthForUint(objectsLength)
	offsetTableOffset := uint64(len(g.buf))

	for _, off := range g.offsets {
		b := make([]byte, offsetSize)
		packUint(b, off, offsetSize)
		g.buf = append(g.buf, b...)
	}

	tr.Debugf("generate: offset_size=%d, num_objects=%d, top=%d, table@0x%x",
		offsetSize, len(g.offsets), root, offsetTableOffset)

	tl := trailer{
		OffsetIntSize:     uint8(offsetSize),
		ObjectRefSize:     uint8(refSize),
		NumObjects:        uint64(len(g.offsets)),
		TopObject:         root,
		OffsetTableOffset: offsetTableOffset,
	}
	writeTrailer(newByteWriter(&g.buf), tl)

	return g.buf, nil
}

// writeTrailer appends the 32-byte trailer to w.
func writeTrailer(w byteWriter, tl trailer) {
	if err := binary.Write(w, binary.BigEndian, tl); err != nil {
		panic(wrapErr(TooLarge, err, "writing trailer"))
	}
}

// generatorState is the growing object buffer plus the recorded per-object
// byte offsets used to build the offset table at the end. Per spec.md §9,
// child-reference slots are always addressed by offset into g.buf, never
// by a slice or pointer held across a recursive emit() call, since
// recursion can trigger an append-driven reallocation of g.buf.
type generatorState struct {
	buf     []byte
	offsets []uint64
	refSize int
}

// emit writes v as a single object (recursing into any container children)
// and returns its assigned object index.
func (g *generatorState) emit(v interface{}, depth int) uint64 {
	if depth > maxDepth {
		panic(newErr(DepthExceeded, "generate recursion exceeded %d levels", maxDepth))
	}

	idx := uint64(len(g.offsets))
	g.offsets = append(g.offsets, uint64(len(g.buf)))

	switch {
	case isUID(v):
		g.writeUID(uidValue(v))
	case isIntegerKind(v):
		g.writeInt(integerValue(v))
	case isStringKind(v):
		g.writeString(stringValue(v))
	case isBytesKind(v):
		g.writeData(bytesValue(v))
	case isDictKind(v):
		g.writeDict(dictValue(v), depth)
	case isArrayKind(v):
		g.writeArray(arrayValue(v), depth)
	case isBoolKind(v):
		g.writeBool(boolValue(v))
	case isDateKind(v):
		g.writeDate(dateValue(v))
	case isFloatKind(v):
		g.writeReal(floatValue(v))
	default:
		panic(newErr(Unsupported, "value of type %T has no bplist encoding", v))
	}

	return idx
}

func (g *generatorState) writeBool(v bool) {
	if v {
		g.buf = append(g.buf, tagBoolTrue)
	} else {
		g.buf = append(g.buf, tagBoolFalse)
	}
}

// writeInt implements pack_int (spec.md §4.1): width selection by leading
// zero bits, negative values always 8 bytes.
func (g *generatorState) writeInt(v int64) {
	width, nibble := intWidthFor(v)
	g.buf = append(g.buf, tagInt|nibble)
	b := make([]byte, width)
	packUint(b, uint64(v), width)
	g.buf = append(g.buf, b...)
}

func (g *generatorState) writeUID(u cf.UID) {
	width := minimumWidthForUint(uint64(u))
	g.buf = append(g.buf, tagUID|uint8(width-1))
	b := make([]byte, width)
	packUint(b, uint64(u), width)
	g.buf = append(g.buf, b...)
}

func (g *generatorState) writeReal(v float64) {
	g.buf = append(g.buf, tagRealDouble)
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	g.buf = append(g.buf, b...)
}

// writeDate implements spec.md §4.3: subtract the Apple epoch, reinterpret
// the IEEE bit pattern as u64, write big-endian.
func (g *generatorState) writeDate(d cf.Date) {
	g.buf = append(g.buf, tagDate)
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(d.AppleSeconds()))
	g.buf = append(g.buf, b...)
}

// writeCountedTag implements pack_type_and_length (spec.md §4.1).
func (g *generatorState) writeCountedTag(tag uint8, count uint64) {
	if count < 0xF {
		g.buf = append(g.buf, tag|uint8(count))
		return
	}
	g.buf = append(g.buf, tag|0xF)
	g.writeInt(int64(count))
}

func (g *generatorState) writeData(data []byte) {
	g.writeCountedTag(tagData, uint64(len(data)))
	g.buf = append(g.buf, data...)
}

// writeString chooses ASCII when every code point fits in 7 bits (spec.md
// §4.3: "a conforming implementation should restrict to ASCII"), UTF-16BE
// big-endian code units otherwise.
func (g *generatorState) writeString(s string) {
	for _, r := range s {
		if r > 0x7F {
			units := utf16.Encode([]rune(s))
			g.writeCountedTag(tagUTF16, uint64(len(units)))
			b := make([]byte, len(units)*2)
			for i, u := range units {
				binary.BigEndian.PutUint16(b[i*2:], u)
			}
			g.buf = append(g.buf, b...)
			return
		}
	}
	g.writeCountedTag(tagASCII, uint64(len(s)))
	g.buf = append(g.buf, s...)
}

// writeArray implements the container-encoding recipe of spec.md §4.3: emit
// count, reserve count*ref_size placeholder bytes addressed by offset, then
// recurse and patch each slot with the child's object index.
func (g *generatorState) writeArray(arr []interface{}, depth int) {
	g.writeCountedTag(tagArray, uint64(len(arr)))
	slotsOffset := len(g.buf)
	g.buf = append(g.buf, make([]byte, len(arr)*g.refSize)...)

	for i, v := range arr {
		childIdx := g.emit(v, depth+1)
		slot := slotsOffset + i*g.refSize
		packUint(g.buf[slot:slot+g.refSize], childIdx, g.refSize)
	}
}

// writeDict emits all keys first (in insertion order), then all values, per
// spec.md §4.3.
func (g *generatorState) writeDict(d *cf.Dict, depth int) {
	cnt := d.Len()
	g.writeCountedTag(tagDict, uint64(cnt))
	slotsOffset := len(g.buf)
	g.buf = append(g.buf, make([]byte, cnt*2*g.refSize)...)

	for i, k := range d.Keys {
		childIdx := g.emit(k, depth+1)
		slot := slotsOffset + i*g.refSize
		packUint(g.buf[slot:slot+g.refSize], childIdx, g.refSize)
	}
	for i, v := range d.Values {
		childIdx := g.emit(v, depth+1)
		slot := slotsOffset + (cnt+i)*g.refSize
		packUint(g.buf[slot:slot+g.refSize], childIdx, g.refSize)
	}
}

// countObjects walks v the same way emit() will, without writing any
// bytes, so Generate can pick a correct ref_size before emitting the first
// object (spec.md §9, resolving the "pre-committed ref_size = 2" defect by
// running the cheap counting pre-pass option (a) describes).
func countObjects(v interface{}, depth int) int {
	if depth > maxDepth {
		panic(newErr(DepthExceeded, "generate recursion exceeded %d levels", maxDepth))
	}

	switch {
	case isUID(v), isIntegerKind(v), isStringKind(v), isBytesKind(v),
		isBoolKind(v), isDateKind(v), isFloatKind(v):
		return 1
	case isDictKind(v):
		d := dictValue(v)
		n := 1
		for _, k := range d.Keys {
			n += countObjects(k, depth+1)
		}
		for _, val := range d.Values {
			n += countObjects(val, depth+1)
		}
		return n
	case isArrayKind(v):
		n := 1
		for _, e := range arrayValue(v) {
			n += countObjects(e, depth+1)
		}
		return n
	default:
		panic(newErr(Unsupported, "value of type %T has no bplist encoding", v))
	}
}

// newByteWriter adapts a *[]byte to io.Writer for encoding/binary.Write,
// matching the teacher's countedWriter idiom of wrapping io.Writer rather
// than hand-rolling big-endian struct packing.
type byteWriter struct{ buf *[]byte }

func newByteWriter(buf *[]byte) byteWriter { return byteWriter{buf} }

func (w byteWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

package bplist

import (
	"testing"

	"github.com/kr/pretty"
	check "gopkg.in/check.v1"
)

// Hook gocheck into `go test`. The teacher's go.mod names both check.v1 and
// kr/pretty as direct requirements; this suite is their home — a
// fixture/table style for the width-class and trailer-validation matrices
// that reads more naturally than a bare testing.T loop, with pretty's
// diff-style %#v output on failure.
func TestSuite(t *testing.T) { check.TestingT(t) }

type widthSuite struct{}

var _ = check.Suite(&widthSuite{})

// TestMinimumWidthClasses exercises every boundary named in spec.md §8:
// 0, 127, 128, 255, 256, 65535, 65536, 2^31-1, 2^31, 2^63-1.
func (s *widthSuite) TestMinimumWidthClasses(c *check.C) {
	cases := []struct {
		n    uint64
		want int
	}{
		{0, 1}, {127, 1}, {128, 1}, {255, 1},
		{256, 2}, {65535, 2},
		{65536, 4}, {0x7fffffff, 4}, {0x80000000, 4}, {0xffffffff, 4},
		{0x100000000, 8}, {0x7fffffffffffffff, 8},
	}
	for _, tc := range cases {
		got := minimumWidthForUint(tc.n)
		if got != tc.want {
			c.Errorf("minimumWidthForUint(%d) = %d, want %d\n%# v", tc.n, got, tc.want, pretty.Formatter(tc))
		}
	}
}

// TestNegativeIntegersAlwaysWidthEight covers intWidthFor's rule that any
// set bit in the high 32 bits of the u64 reinterpretation -- including
// every negative value -- forces an 8-byte encoding (spec.md §4.1).
func (s *widthSuite) TestNegativeIntegersAlwaysWidthEight(c *check.C) {
	for _, v := range []int64{-1, -2, -128, -65536, -1 << 40} {
		w, nibble := intWidthFor(v)
		c.Check(w, check.Equals, 8)
		c.Check(nibble, check.Equals, uint8(0x3))
	}
}

type trailerSuite struct{}

var _ = check.Suite(&trailerSuite{})

func validBplist(numObjects, offsetSize int) []byte {
	// header(8) + one 1-byte object(08 == false) + offset table + trailer
	data := []byte("bplist00")
	data = append(data, 0x08)
	offTableOffset := len(data)
	for i := 0; i < numObjects; i++ {
		b := make([]byte, offsetSize)
		packUint(b, 8, offsetSize)
		data = append(data, b...)
	}
	tl := trailer{
		OffsetIntSize:     uint8(offsetSize),
		ObjectRefSize:     1,
		NumObjects:        uint64(numObjects),
		TopObject:         0,
		OffsetTableOffset: uint64(offTableOffset),
	}
	b := make([]byte, 0, 32)
	w := newByteWriter(&b)
	writeTrailer(w, tl)
	return append(data, b...)
}

// TestTrailerWidthValidation exercises spec.md §3's
// "offset_size, ref_size ∈ {1,2,4,8}" invariant across every byte value,
// not just the legal set, to confirm isValidWidth (the check Parse uses to
// report MalformedTrailer) accepts exactly the legal widths.
func (s *trailerSuite) TestTrailerWidthValidation(c *check.C) {
	for w := 0; w < 256; w++ {
		ok := isValidWidth(uint8(w))
		want := w == 1 || w == 2 || w == 4 || w == 8
		c.Check(ok, check.Equals, want, check.Commentf("width %d", w))
	}
}

func (s *trailerSuite) TestValidDocumentParses(c *check.C) {
	data := validBplist(1, 1)
	v, err := Parse(data)
	c.Assert(err, check.IsNil)
	c.Check(v, check.Equals, false)
}

func (s *trailerSuite) TestMalformedOffsetSizeFails(c *check.C) {
	data := validBplist(1, 1)
	data[len(data)-32+6] = 3 // offset_size must be in {1,2,4,8}
	_, err := Parse(data)
	c.Assert(err, check.NotNil)
	e, ok := err.(*Error)
	c.Assert(ok, check.Equals, true)
	c.Check(e.Kind, check.Equals, MalformedTrailer)
}

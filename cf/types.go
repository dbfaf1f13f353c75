// Package cf holds the nominal host-supplied value types the bplist codec
// needs beyond Go's native bool/int64/float64/string/[]byte: a timestamp
// type and a keyed-archiver UID type, plus the ordered dictionary container
// the wire format requires.
package cf

import "time"

// appleEpoch is the bplist epoch (2001-01-01T00:00:00Z) expressed as Unix
// seconds.
const appleEpoch = 978307200

// Date is a timestamp. On the wire it is stored as an IEEE double counting
// seconds since the Apple epoch; callers see Unix-epoch seconds.
type Date time.Time

// NewDate builds a Date from Unix-epoch seconds.
func NewDate(unixSeconds float64) Date {
	sec := int64(unixSeconds)
	nsec := int64((unixSeconds - float64(sec)) * float64(time.Second))
	return Date(time.Unix(sec, nsec).UTC())
}

// Unix returns the Date as Unix-epoch seconds.
func (p Date) Unix() float64 {
	t := time.Time(p)
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// Time returns the underlying time.Time.
func (p Date) Time() time.Time {
	return time.Time(p)
}

// AppleSeconds returns the wire-format value: seconds since the Apple epoch.
func (p Date) AppleSeconds() float64 {
	return p.Unix() - appleEpoch
}

// DateFromAppleSeconds builds a Date from the wire-format value.
func DateFromAppleSeconds(s float64) Date {
	return NewDate(s + appleEpoch)
}

// UID is a keyed-archiver object identity. It is a distinct nominal type so
// that it is never confused with a plain integer during generation
// dispatch, even though both are unsigned integers underneath.
type UID uint64

// Dict is an ordered mapping from Value to Value. Wire semantics are
// unordered, but insertion order is preserved across a parse/generate
// round-trip. Keys are not restricted to strings: the reference format
// allows any object as a dictionary key (bpylist2's CPython implementation
// builds a plain PyDict with arbitrary key objects, not a string-keyed
// map), so Dict keeps parallel slices instead of a native Go map.
type Dict struct {
	Keys   []interface{}
	Values []interface{}
}

// NewDict returns an empty ordered dictionary.
func NewDict() *Dict {
	return &Dict{}
}

// Len returns the number of entries.
func (p *Dict) Len() int {
	return len(p.Keys)
}

// Set appends a key/value pair, or overwrites the value of an existing
// equal key in place (keeping its original position).
func (p *Dict) Set(key, value interface{}) {
	for i, k := range p.Keys {
		if k == key {
			p.Values[i] = value
			return
		}
	}
	p.Keys = append(p.Keys, key)
	p.Values = append(p.Values, value)
}

// Get looks up a value by key.
func (p *Dict) Get(key interface{}) (interface{}, bool) {
	for i, k := range p.Keys {
		if k == key {
			return p.Values[i], true
		}
	}
	return nil, false
}

// Range visits every key/value pair in insertion order.
func (p *Dict) Range(r func(key, value interface{})) {
	for i, k := range p.Keys {
		r(k, p.Values[i])
	}
}

// Package bplist implements a bidirectional codec for Apple's binary
// property list format, version "00" (bit-compatible with
// CoreFoundation's CFBinaryPList).
//
// Parsed and generated values live in a closed, tagged union exposed as
// plain interface{}: bool, int64, float64, Date, UID, []byte, string,
// []interface{} (array), *Dict (dictionary). Date and UID are nominal
// types distinct from float64/int64 so that generation dispatch never
// confuses a timestamp or an archiver identity with a plain number.
package bplist

import "github.com/bplist00/bplist/cf"

// Date is a timestamp whose wire representation is seconds since
// 2001-01-01 UTC and whose logical representation is Unix-epoch seconds.
type Date = cf.Date

// UID is an unsigned integer semantically distinct from a plain int; used
// by keyed archive formats to designate object identities.
type UID = cf.UID

// Dict is an ordered mapping from Value to Value. Insertion order is
// preserved across Generate/Parse; wire semantics are unordered.
type Dict = cf.Dict

// NewDate builds a Date from Unix-epoch seconds.
func NewDate(unixSeconds float64) Date {
	return cf.NewDate(unixSeconds)
}

// IsDate reports whether v is a Date.
func IsDate(v interface{}) bool {
	_, ok := v.(Date)
	return ok
}

// IsUID reports whether v is a UID.
func IsUID(v interface{}) bool {
	_, ok := v.(UID)
	return ok
}

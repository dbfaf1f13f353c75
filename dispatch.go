package bplist

import "github.com/bplist00/bplist/cf"

// Dispatch order matches spec.md §4.3 exactly: UID is checked before any
// integer kind (cf.UID is a distinct named type, so isIntegerKind does not
// match it either way), Date is checked before float64 (a Date is float64 under
// the hood on some hosts), and so on. Each predicate/accessor pair below
// stands in for the single exhaustive match a statically typed target
// would otherwise write (spec.md §9's "Marker nibble dispatch" note).

func isUID(v interface{}) bool {
	_, ok := v.(cf.UID)
	return ok
}

func uidValue(v interface{}) cf.UID { return v.(cf.UID) }

func isIntegerKind(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func integerValue(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	panic(newErr(Unsupported, "value of type %T is not an integer", v))
}

func isStringKind(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func stringValue(v interface{}) string { return v.(string) }

// isBytesKind matches []byte; it is distinct from uint8 (the element type)
// so it never collides with the integer case above.
func isBytesKind(v interface{}) bool {
	_, ok := v.([]byte)
	return ok
}

func bytesValue(v interface{}) []byte { return v.([]byte) }

func isDictKind(v interface{}) bool {
	_, ok := v.(*cf.Dict)
	return ok
}

func dictValue(v interface{}) *cf.Dict { return v.(*cf.Dict) }

func isArrayKind(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

func arrayValue(v interface{}) []interface{} { return v.([]interface{}) }

func isBoolKind(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func boolValue(v interface{}) bool { return v.(bool) }

func isDateKind(v interface{}) bool {
	_, ok := v.(cf.Date)
	return ok
}

func dateValue(v interface{}) cf.Date { return v.(cf.Date) }

func isFloatKind(v interface{}) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func floatValue(v interface{}) float64 {
	switch f := v.(type) {
	case float32:
		return float64(f)
	case float64:
		return f
	}
	panic(newErr(Unsupported, "value of type %T is not a float", v))
}

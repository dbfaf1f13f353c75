// Command tagtable prints a tag_table.go-compatible marker name table.
//
// Usage: tagtable > tag_table.go
//
// Adapted from the teacher's internal/cmd/tabler, which emitted
// text_tables.go's OpenStep/GNUStep character bitsets — out of scope here
// (no text-format support). This prints the one static table this codec
// does have: marker high nibble -> kind name, used by UnknownTag error
// messages and -v tracing.
package main

import "fmt"

var tags = []struct {
	marker uint8
	name   string
}{
	{0x00, "primitive"},
	{0x10, "int"},
	{0x20, "real"},
	{0x30, "date"},
	{0x40, "data"},
	{0x50, "ascii"},
	{0x60, "utf16"},
	{0x80, "uid"},
	{0xA0, "array"},
	{0xD0, "dict"},
}

func main() {
	fmt.Println("// Code generated by internal/cmd/tagtable; DO NOT EDIT.")
	fmt.Println()
	fmt.Println("package bplist")
	fmt.Println()
	fmt.Println("var tagNameTable = map[uint8]string{")
	for _, t := range tags {
		fmt.Printf("\t0x%02x: %q,\n", t.marker, t.name)
	}
	fmt.Println("}")
}

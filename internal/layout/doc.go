// Package layout defines the fixed-layout encodings of the five commune
// record kinds and their storage budgets.
//
// Every record starts with an 8-byte discriminator derived from the kind
// name and a layout version, followed by little-endian integers, one-byte
// bools, 32-byte keys and 4-byte length-prefixed strings. A string bounded
// to N characters reserves N*4 bytes, the longest UTF-8 encoding of N code
// points, so any string within its character limit fits its slot.
package layout

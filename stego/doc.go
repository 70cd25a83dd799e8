// Package stego hides a byte payload in the low bits of a carrier pixel grid
// and recovers it.
//
// Every pixel carries one 3-bit code: the low bits of red, green and blue, in
// that order. Payload bits are taken most-significant first and codes fill the
// grid column by column, walking down each column before moving right.
//
// The scheme has no length field. Extract returns everything up to the last
// non-zero byte, so a payload ending in 0x00 loses those trailing bytes; wrap
// such payloads with package frame when the exact length matters.
package stego

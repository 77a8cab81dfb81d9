// Package escher decodes and encodes the Escher (Office Drawing) record tree
// stored inside BIFF8 drawing records.
//
// # Record Format
//
// Every record starts with an 8-byte little-endian header:
//
//	[Options(2)][RecordID(2)][Length(4)]
//
// The low 4 bits of Options hold the record version and the high 12 bits hold
// the instance. A record is a container when its id falls in the container
// range (0xF000-0xF005) or when its version is 0xF; otherwise it is an atom
// whose body is an opaque payload.
//
// # Tolerance
//
// Declared lengths are a hint. A container decodes children from
// min(length, bytes remaining) and an atom takes min(length, bytes remaining)
// bytes, so an overstated length never fails a decode. Encoding always
// recomputes lengths from the children and payloads actually present.
//
// Only the atoms needed to find shape boundaries and identifiers have typed
// views (Sp, Spgr, Dg, Dgg). Every other atom round-trips as raw bytes.
package escher

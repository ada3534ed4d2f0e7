package core

// Pack encodes a landmark as a 41-bit hash: 13 bits for the anchor
// frequency bin, 13 bits for the target frequency bin, and 15 bits for the
// time delta in milliseconds between them, laid out as
//
//	(f1 << 28) | (f2 << 15) | deltaMs
//
// in the low 41 bits of the returned word. Each field is masked to its
// width rather than validated: a delta beyond the 15-bit range
// (32.768s) silently aliases, which is accepted behavior, not a bug.
func Pack(f1, f2 uint16, deltaMs uint32) Hash {
	const (
		freqMask  = (1 << 13) - 1
		deltaMask = (1 << 15) - 1
	)
	packed := (uint64(f1)&freqMask)<<28 | (uint64(f2)&freqMask)<<15 | uint64(deltaMs)&deltaMask
	return Hash(packed)
}

// Unpack reverses Pack, recovering the three packed fields. It is a pure
// bit-extraction; it cannot fail, since the low 41 bits of any Hash were
// produced by masking in Pack.
func Unpack(h Hash) (f1, f2 uint16, deltaMs uint32) {
	const (
		freqMask  = (1 << 13) - 1
		deltaMask = (1 << 15) - 1
	)
	v := uint64(h)
	f1 = uint16((v >> 28) & freqMask)
	f2 = uint16((v >> 15) & freqMask)
	deltaMs = uint32(v & deltaMask)
	return
}

package countmin

// Constants from the 32-bit FNV-1a hash (see hash/fnv). The family is
// seeded by XORing the row seed into the offset basis, so the stdlib
// implementation cannot be used directly.
const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// hashKey computes the seeded FNV-1a hash of key. It is a pure
// function of (key, seed): the same inputs always produce the same
// value.
func hashKey(key []byte, seed uint32) uint32 {
	h := fnvOffset32 ^ seed
	for _, b := range key {
		h ^= uint32(b)
		h *= fnvPrime32
	}
	return h
}

// hashString computes the seeded FNV-1a hash of a string without
// converting it to a byte slice. Produces the same value as hashKey
// over []byte(s).
func hashString(s string, seed uint32) uint32 {
	h := fnvOffset32 ^ seed
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// fillHashes writes one hash per seed into out. len(out) must be at
// least len(seeds); no allocation happens on this path.
func fillHashes(key []byte, seeds, out []uint32) {
	for i, seed := range seeds {
		out[i] = hashKey(key, seed)
	}
}

// fillHashesString is fillHashes for string keys.
func fillHashesString(s string, seeds, out []uint32) {
	for i, seed := range seeds {
		out[i] = hashString(s, seed)
	}
}

package checksum

import "github.com/zeebo/xxh3"

// XXH3Sum32 computes the 64-bit XXH3 hash of data and folds it to 32 bits
// for use as a settings-value checksum (Type.XXH3). Folding by XOR of the
// two halves, rather than truncation, keeps both halves of the 64-bit
// digest load-bearing.
func XXH3Sum32(data []byte) uint32 {
	sum := xxh3.Hash(data)
	return uint32(sum) ^ uint32(sum>>32)
}

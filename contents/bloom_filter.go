package contents

import (
	"hash/fnv"
	"math"
	"sync"
)

// NameFilter is a bloom filter over author names. It answers "definitely
// absent" or "maybe present"; a positive answer must be confirmed by the store.
type NameFilter struct {
	mu        sync.RWMutex
	words     []uint64
	numBits   uint64
	numHashes uint64
}

func NewNameFilter(expectedNames uint, falsePositiveRate float64) *NameFilter {
	if expectedNames == 0 {
		expectedNames = 1
	}

	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	m := optimalBitCount(uint64(expectedNames), falsePositiveRate)
	k := optimalHashCount(m, uint64(expectedNames))

	return &NameFilter{
		words:     make([]uint64, (m+63)/64),
		numBits:   m,
		numHashes: k,
	}
}

func optimalBitCount(n uint64, p float64) uint64 {
	m := -float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)

	return max(uint64(math.Ceil(m)), 64)
}

func optimalHashCount(m, n uint64) uint64 {
	k := uint64(math.Round(float64(m) / float64(n) * math.Ln2))

	return max(k, 1)
}

// positions derives k bit positions from the two halves of a 64-bit FNV-1a sum.
func (f *NameFilter) positions(name string) []uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()

	h1 := sum & 0xffffffff
	h2 := (sum >> 32) | 1

	positions := make([]uint64, f.numHashes)
	for i := range f.numHashes {
		positions[i] = (h1 + i*h2) % f.numBits
	}

	return positions
}

func (f *NameFilter) Add(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pos := range f.positions(name) {
		f.words[pos/64] |= 1 << (pos % 64)
	}
}

// MayContain returns false only when name was never added.
func (f *NameFilter) MayContain(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, pos := range f.positions(name) {
		if f.words[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}

	return true
}

package codec

import (
	"fmt"
	"math/bits"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Enum-string indexing promotes frequently repeated strings to 1- or 2-byte
// references, negotiated in-band through a one-time config record (tag 0x08).
// Strings shorter than enumMinLength never participate, and object field
// names never pass through the enum indexer; keys are compressed by the
// field-name codec exclusively.
const (
	enumMinLength = 3
	enumIndexCap  = 65536

	enumAlgorithmLRU = 0
	enumCapShiftBias = 5 // capacity = 1 << (5 + n), n in 0..15
)

// EnumConfig selects the enum-string indexing parameters carried in-band.
type EnumConfig struct {
	// LRUCapacity is the frequency-tracking LRU size. It must be a power of
	// two between 32 and 1<<20.
	LRUCapacity int

	// MinFrequency is the occurrence count, 1..256, at which a string is
	// promoted to the indexed list.
	MinFrequency int
}

func (c EnumConfig) validate() error {
	if c.LRUCapacity < 1<<enumCapShiftBias || c.LRUCapacity > 1<<(enumCapShiftBias+15) ||
		bits.OnesCount(uint(c.LRUCapacity)) != 1 {
		return fmt.Errorf("%w: enum LRU capacity %d", ErrInvalidArgument, c.LRUCapacity)
	}
	if c.MinFrequency < 1 || c.MinFrequency > 256 {
		return fmt.Errorf("%w: enum min frequency %d", ErrInvalidArgument, c.MinFrequency)
	}
	return nil
}

// configRecord returns the two bytes following the 0x08 tag: algorithm id and
// log2(capacity)-5 in the first, minFrequency-1 in the second.
func (c EnumConfig) configRecord() [2]byte {
	shift := bits.TrailingZeros(uint(c.LRUCapacity)) - enumCapShiftBias
	return [2]byte{
		byte(enumAlgorithmLRU<<4) | byte(shift),
		byte(c.MinFrequency - 1),
	}
}

func parseEnumConfig(b0, b1 byte) (EnumConfig, error) {
	if algorithm := b0 >> 4; algorithm != enumAlgorithmLRU {
		return EnumConfig{}, fmt.Errorf("%w: enum algorithm %d", ErrUnsupported, algorithm)
	}
	return EnumConfig{
		LRUCapacity:  1 << (enumCapShiftBias + int(b0&0x0F)),
		MinFrequency: int(b1) + 1,
	}, nil
}

// enumIndexer is the shared promotion state machine. The encoder and the
// decoder each drive their own instance through the same sequence of literal
// string occurrences, so the two indexed lists stay index-identical.
type enumIndexer struct {
	cfg     EnumConfig
	lru     *simplelru.LRU[string, int]
	index   map[string]int
	strings []string
}

func newEnumIndexer(cfg EnumConfig) (*enumIndexer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lru, err := simplelru.NewLRU[string, int](cfg.LRUCapacity, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &enumIndexer{
		cfg:   cfg,
		lru:   lru,
		index: make(map[string]int),
	}, nil
}

// lookup returns the promoted index of s, if s has been promoted.
func (x *enumIndexer) lookup(s string) (int, bool) {
	idx, ok := x.index[s]
	return idx, ok
}

// stringAt resolves a decoded reference index.
func (x *enumIndexer) stringAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(x.strings) {
		return "", false
	}
	return x.strings[idx], true
}

// observe records one literal occurrence of s. Once the frequency reaches the
// configured threshold and the indexed list is under its cap, s moves from
// the LRU to the indexed list and is assigned the next index. Eviction of
// cold entries is the LRU's standard tail removal.
func (x *enumIndexer) observe(s string) {
	freq, _ := x.lru.Get(s)
	freq++
	if freq >= x.cfg.MinFrequency && len(x.strings) < enumIndexCap {
		x.lru.Remove(s)
		x.index[s] = len(x.strings)
		x.strings = append(x.strings, s)
		return
	}
	x.lru.Add(s, freq)
}

// Package matcher implements the three match-finding data structures
// described in spec §4: hash-chain (HC), binary-tree (BT), and
// row-based SIMD hash (Row), plus the dedicated dictionary search
// (DDSS) side arm. All three share backing-storage conventions (spec
// §3 "Hash tables") and the Finder interface below; the lazy parser
// in package parse is generic over Finder and over DictMode.
package matcher

import (
	"github.com/dmitrov-oss/zseqcore/window"
)

// SearchMethod selects which of the three match-finder data
// structures backs a MatchState.
type SearchMethod int

const (
	MethodHC SearchMethod = iota
	MethodBT
	MethodRow
)

// DictMode selects how a block's window relates to dictionary bytes,
// per spec §4.8's mode matrix.
type DictMode int

const (
	// NoDict: no dictionary is involved.
	NoDict DictMode = iota
	// ExtDict: an external dictionary occupies [lowLimit, dictLimit)
	// in a separate byte buffer; requires the extDict parser variant.
	ExtDict
	// DictMatchState: a fully-built sibling MatchState (its own
	// hash/chain or row tables) is searched as a second, read-only
	// source after the local tables are exhausted.
	DictMatchState
	// DedicatedDictSearch: a compact bucketed DDSS layout is searched
	// instead. Only legal with MethodHC and MethodRow (spec §4.8).
	DedicatedDictSearch
)

// Params mirrors spec §6's cParams: the compression-parameter tuple a
// MatchState is constructed from. Selecting these from a compression
// level is an external collaborator's job (spec §1 Out of scope).
type Params struct {
	WindowLog    uint
	ChainLog     uint
	HashLog      uint
	SearchLog    uint
	MinMatch     uint
	TargetLength uint
	Strategy     Strategy
	Method       SearchMethod
	DictMode     DictMode
}

// Strategy selects the parser's lookahead depth, independent of which
// search method backs it (spec §6 "Configuration enum").
type Strategy int

const (
	Greedy Strategy = iota
	Lazy
	Lazy2
)

// Result is a match-finder's answer at one position: the best match
// length found and its encoded offset, or Len < Params.MinMatch when
// no usable match exists.
type Result struct {
	Len        uint32
	OffsetCode uint32
}

// Found reports whether r represents a usable match for the given
// minMatch.
func (r Result) Found(minMatch uint32) bool {
	return r.Len >= minMatch
}

// Finder is the shared interface the lazy parser drives. Insert
// catches up internal tables to [NextToUpdate(), curr) the way spec
// §4.2/§4.3's insertAndFindFirst / updateDUBT do; Search returns the
// best candidate at curr and performs any insertion of curr into the
// tables that the concrete method requires as a side effect (as the
// reference implementations do).
type Finder interface {
	// Insert catches up the table to position curr, without
	// searching.
	Insert(w *window.Window, curr window.Position)

	// Search finds the best match at curr and inserts curr into the
	// table. prevOffsetCode is the literal-offset code (offset +
	// RepMove) of the parser's current rep0 distance, used by BT's cost
	// criterion (spec §4.3).
	Search(w *window.Window, curr window.Position, prevOffsetCode uint32) Result

	// NextToUpdate returns the position the next catch-up Insert
	// starts from (spec §8 invariant 5). BT may advance it past
	// positions it never folds into its tree.
	NextToUpdate() window.Position

	// SetNextToUpdate forces the update cursor, used when attaching a
	// loaded dictionary's already-digested range.
	SetNextToUpdate(p window.Position)
}

// hash multiplies v by a fixed odd constant and keeps the top log
// bits, the multiply-shift scheme spec's reference and the teacher's
// HCMatcher.hash4/hash5 both use.
func hash(v uint64, log uint) uint32 {
	const prime64 = 0x9E3779B185EBCA87
	return uint32((v * prime64) >> (64 - log))
}

// readAt reads up to 8 little-endian bytes starting at a Tail slice,
// zero-padding past the end of the slice. Match finders only ever
// hash positions in the current prefix (positions being inserted are
// always fresh source bytes, never dictionary bytes), so a plain
// slice read is safe here without going through Window.ByteAt.
func readAt(tail []byte, n int) uint64 {
	var buf [8]byte
	k := n
	if k > len(tail) {
		k = len(tail)
	}
	if k > 8 {
		k = 8
	}
	copy(buf[:], tail[:k])
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v
}

// hashAt computes the match-finder's hash of the minMatch bytes
// starting at position p in the prefix.
func hashAt(w *window.Window, p window.Position, minMatch uint, log uint) uint32 {
	tail := w.Tail(p)
	v := readAt(tail, int(minMatch))
	mask := uint64(1)<<(8*minMatch) - 1
	if minMatch >= 8 {
		mask = ^uint64(0)
	}
	return hash(v&mask, log)
}

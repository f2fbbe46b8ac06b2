package matcher

import (
	"math/bits"

	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

// btTables is the double-binary-tree backing storage (spec §3's BT
// layout): for each inserted position, a (smallerChild, largerChild)
// pair. Rather than overload a position value as the "not yet sorted"
// sentinel (spec §9's UNSORTED design note), an explicit parallel
// bitmap (unsorted) tags deferred nodes, so no legal position value is
// stolen from the index space.
type btTables struct {
	smaller  []window.Position
	larger   []window.Position
	unsorted []bool
}

func newBTTables(chainLog uint) *btTables {
	n := 1 << chainLog
	return &btTables{
		smaller:  make([]window.Position, n),
		larger:   make([]window.Position, n),
		unsorted: make([]bool, n),
	}
}

func (t *btTables) mask() uint32 { return uint32(len(t.smaller) - 1) }

// BT is the binary-tree match finder (spec §4.3).
type BT struct {
	tbl       *btTables
	hashTable []window.Position

	hashLog   uint
	windowLog uint
	minMatch  uint
	searchLog uint

	nextToUpdate window.Position

	DictMode DictMode
	Dict     *DictState
}

// NewBT constructs a BT finder sized from p.
func NewBT(p Params) *BT {
	return &BT{
		tbl:       newBTTables(p.ChainLog),
		hashTable: make([]window.Position, 1<<p.HashLog),
		hashLog:   p.HashLog,
		windowLog: p.WindowLog,
		minMatch:  effectiveMinMatch(p.MinMatch),
		searchLog: p.SearchLog,
		DictMode:  p.DictMode,
	}
}

func (t *BT) hashMask() uint32 { return uint32(len(t.hashTable) - 1) }

// NextToUpdate implements Finder.
func (t *BT) NextToUpdate() window.Position { return t.nextToUpdate }

// SetNextToUpdate implements Finder.
func (t *BT) SetNextToUpdate(p window.Position) { t.nextToUpdate = p }

// Insert implements Finder: the catch-up step of spec §4.3. Each
// position gets its previous same-hash head recorded as a deferred
// "smaller" link and is marked unsorted; the expensive tree splice
// happens lazily, on the next search that touches this hash bucket.
func (t *BT) Insert(w *window.Window, curr window.Position) {
	for idx := t.nextToUpdate; idx < curr; idx++ {
		hv := hashAt(w, idx, t.minMatch, t.hashLog) & t.hashMask()
		prev := t.hashTable[hv]
		slot := uint32(idx) & t.tbl.mask()
		t.tbl.smaller[slot] = prev
		t.tbl.unsorted[slot] = true
		t.hashTable[hv] = idx
	}
	t.nextToUpdate = curr
}

// sortBucket replays the deferred chain for hash bucket hv: it walks
// smaller-child links while the node is still unsorted, reverses the
// traversed list, and folds each position into the tree oldest-first
// via insertOne, per spec §4.3's "Batch sort".
func (t *BT) sortBucket(w *window.Window, hv uint32) {
	var stack []window.Position
	p := t.hashTable[hv]
	for p != 0 && t.tbl.unsorted[uint32(p)&t.tbl.mask()] {
		stack = append(stack, p)
		t.tbl.unsorted[uint32(p)&t.tbl.mask()] = false
		p = t.tbl.smaller[uint32(p)&t.tbl.mask()]
	}
	for i := len(stack) - 1; i >= 0; i-- {
		t.insertOne(w, stack[i], false, 0)
	}
}

// btLow is the lowest position a BT walk may descend to before
// terminating (spec §4.3: "btLow = max(0, curr - btMask)").
func (t *BT) btLow(p window.Position) window.Position {
	span := window.Position(t.tbl.mask())
	if p <= span {
		return 0
	}
	return p - span
}

// insertOne performs the classic double-binary-tree insertion of
// position p: it walks the existing tree (rooted at hashTable[hash(p)])
// comparing p's suffix against each candidate, splitting the tree into
// a "smaller" and "larger" side as it goes and reattaching them as p's
// children; p becomes the new root. When track is true (the live
// search at curr, as opposed to a deferred catch-up insertion), it
// additionally records the best candidate seen under the cost
// criterion from spec §4.3, seeded from prevBest. Search seeds it with
// length 0 and the caller's prevOffsetCode, so only that offset's cost
// (not a length) is the initial bar to beat.
func (t *BT) insertOne(w *window.Window, p window.Position, track bool, prevBest Result) Result {
	hv := hashAt(w, p, t.minMatch, t.hashLog) & t.hashMask()
	root := t.hashTable[hv]
	low := t.btLow(p)

	mask := t.tbl.mask()
	pSlot := uint32(p) & mask

	commonSmaller, commonLarger := 0, 0
	smallerWrite := &t.tbl.smaller[pSlot]
	largerWrite := &t.tbl.larger[pSlot]

	best := prevBest
	iend := w.NextSrc
	target := w.Tail(p)

	candidate := root
	attempts := 1 << t.searchLog

	for attempts > 0 && candidate > low {
		attempts--
		matchLength := commonSmaller
		if commonLarger < matchLength {
			matchLength = commonLarger
		}

		if w.InPrefix(candidate) {
			matchLength += w.Count(candidate+window.Position(matchLength), p+window.Position(matchLength), p+window.Position(len(target)))
		} else {
			matchLength += w.Count2Segments(p+window.Position(matchLength), candidate+window.Position(matchLength), p+window.Position(len(target)), w.DictLimit, w.DictLimit)
		}

		if track {
			offsetCode := uint32(p-candidate) + sequence.RepMove
			if bestBeats(uint32(matchLength), best.Len, offsetCode, best.OffsetCode) {
				best = Result{Len: uint32(matchLength), OffsetCode: offsetCode}
			}
		}

		if int(p)+matchLength >= int(iend) {
			// Cannot determine ordering past the end of input.
			break
		}

		candByte := w.ByteAt(candidate + window.Position(matchLength))
		pByte := w.ByteAt(p + window.Position(matchLength))

		slot := uint32(candidate) & mask
		if candByte < pByte {
			// candidate is lexicographically smaller than p: attach it
			// (and its larger subtree) under p's smaller side.
			*smallerWrite = candidate
			commonSmaller = matchLength
			if candidate <= low {
				break
			}
			smallerWrite = &t.tbl.larger[slot]
			candidate = t.tbl.larger[slot]
		} else {
			*largerWrite = candidate
			commonLarger = matchLength
			if candidate <= low {
				break
			}
			largerWrite = &t.tbl.smaller[slot]
			candidate = t.tbl.smaller[slot]
		}
	}

	*smallerWrite = 0
	*largerWrite = 0
	t.hashTable[hv] = p

	return best
}

// bestBeats implements spec §4.3's cost criterion: 4*(len-bestLen) >
// highBit(curr-m+1) - highBit(prevOffsetCode+1), restated here in
// terms of the candidate's own offsetCode directly.
func bestBeats(length, bestLen, offsetCode, bestOffsetCode uint32) bool {
	if length <= bestLen {
		return false
	}
	delta := int(length) - int(bestLen)
	lhs := 4 * delta
	rhs := HighBit(offsetCode+1) - HighBit(bestOffsetCode+1)
	return lhs > rhs
}

// HighBit returns the index of v's highest set bit (0 for v == 0), the
// same bit-cost proxy zstd_lazy.c's ZSTD_highbit32 provides for the
// gain-based arbitration used by both BT's cost criterion and the lazy
// parser's lookahead (package parse).
func HighBit(v uint32) int {
	if v == 0 {
		return 0
	}
	return bits.Len32(v) - 1
}

// Search implements Finder: batch-sorts the target hash bucket, then
// runs the tracked insert/search at curr.
func (t *BT) Search(w *window.Window, curr window.Position, prevOffsetCode uint32) Result {
	t.Insert(w, curr)

	hv := hashAt(w, curr, t.minMatch, t.hashLog) & t.hashMask()
	t.sortBucket(w, hv)

	best := t.insertOne(w, curr, true, Result{OffsetCode: prevOffsetCode})

	// Skip re-inserting the positions the chosen match already covers:
	// advance nextToUpdate to matchEndIdx-8 rather than curr+1, so a
	// long repetitive run isn't re-hashed byte-by-byte on the next
	// catch-up (spec §4.3; zstd_lazy.c:374-375 applies the same bias
	// after ZSTD_DUBT_findBestMatch).
	next := curr + 1
	if best.Len > 0 {
		matchEndIdx := curr + window.Position(best.Len)
		if matchEndIdx > 8 {
			if skip := matchEndIdx - 8; skip > next {
				next = skip
			}
		}
	}
	t.nextToUpdate = next

	if t.DictMode == DictMatchState && t.Dict != nil && t.Dict.bt != nil {
		if dictBest, pos, ok := t.Dict.probeBT(w, curr, t.minMatch, t.hashLog, t.searchLog); ok && dictBest > int(best.Len) {
			best.Len = uint32(dictBest)
			best.OffsetCode = t.Dict.localOffset(w.LowLimit, curr, pos) + sequence.RepMove
		}
	}

	return best
}

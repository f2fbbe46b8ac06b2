package matcher

import (
	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

// HC is the hash-chain match finder (spec §4.2). hashTable[h] holds
// the most recent position hashed to h; chainTable[pos&chainMask]
// holds the predecessor position in that bucket's chain.
type HC struct {
	hashTable  []window.Position
	chainTable []window.Position

	hashLog   uint
	windowLog uint
	minMatch  uint
	searchLog uint

	nextToUpdate window.Position

	// Dict is consulted when DictMode is DictMatchState: a sibling HC
	// built over the dictionary's own byte buffer.
	Dict *DictState
	// DDSS is consulted when DictMode is DedicatedDictSearch.
	DDSS     *DDSS
	DictMode DictMode
}

// NewHC constructs an HC finder sized from p.
func NewHC(p Params) *HC {
	return &HC{
		hashTable:  make([]window.Position, 1<<p.HashLog),
		chainTable: make([]window.Position, 1<<p.ChainLog),
		hashLog:    p.HashLog,
		windowLog:  p.WindowLog,
		minMatch:   effectiveMinMatch(p.MinMatch),
		searchLog:  p.SearchLog,
		DictMode:   p.DictMode,
	}
}

// effectiveMinMatch treats minMatch==7 as 6, per spec §9's Open
// Question (surfaced instead as a hard validation error by
// zseqcore.Validate in the root package; this clamp exists so an
// internal finder never indexes a table sized for 7 bytes).
func effectiveMinMatch(mm uint) uint {
	if mm == 7 {
		return 6
	}
	return mm
}

func (h *HC) chainMask() uint32 { return uint32(len(h.chainTable) - 1) }
func (h *HC) hashMask() uint32  { return uint32(len(h.hashTable) - 1) }

// NextToUpdate implements Finder.
func (h *HC) NextToUpdate() window.Position { return h.nextToUpdate }

// SetNextToUpdate implements Finder.
func (h *HC) SetNextToUpdate(p window.Position) { h.nextToUpdate = p }

// insertOne hashes position pos and pushes the previous head into the
// chain table, per spec §4.2's insertAndFindFirst catch-up step.
func (h *HC) insertOne(w *window.Window, pos window.Position) {
	hv := hashAt(w, pos, h.minMatch, h.hashLog) & h.hashMask()
	prev := h.hashTable[hv]
	h.chainTable[uint32(pos)&h.chainMask()] = prev
	h.hashTable[hv] = pos
}

// Insert implements Finder: catch up [nextToUpdate, curr).
func (h *HC) Insert(w *window.Window, curr window.Position) {
	for p := h.nextToUpdate; p < curr; p++ {
		h.insertOne(w, p)
	}
	h.nextToUpdate = curr
}

// Search implements Finder.
func (h *HC) Search(w *window.Window, curr window.Position, prevOffsetCode uint32) Result {
	h.Insert(w, curr)

	hv := hashAt(w, curr, h.minMatch, h.hashLog) & h.hashMask()
	head := h.hashTable[hv]

	targetTail := w.Tail(curr)
	maxLen := len(targetTail)

	lowLimit := w.LowestMatchIndex(curr, h.windowLog)
	chainSize := window.Position(1) << h.windowLog

	best := Result{}
	attempts := 1 << h.searchLog
	candidate := head

	for attempts > 0 && candidate != 0 && candidate < curr && candidate >= lowLimit && curr-candidate <= chainSize {
		attempts--

		var length int
		if w.InPrefix(candidate) {
			length = w.Count(candidate, curr, curr+window.Position(maxLen))
		} else {
			// Candidate lies in the external-dictionary region: a
			// cheap 4-byte equality pre-check before paying for
			// count2Segments (spec §4.2).
			if commonPrefixLen(w.Tail(candidate), targetTail, 4) == 4 {
				length = w.Count2Segments(curr, candidate, curr+window.Position(maxLen), w.DictLimit, w.DictLimit)
			}
		}

		if length > int(best.Len) {
			best.Len = uint32(length)
			best.OffsetCode = uint32(curr-candidate) + sequence.RepMove
		}

		next := h.chainTable[uint32(candidate)&h.chainMask()]
		if next >= candidate {
			break // stale chain slot (never written), stop.
		}
		candidate = next
	}

	h.insertOne(w, curr)
	h.nextToUpdate = curr + 1

	if h.DictMode == DictMatchState && h.Dict != nil {
		if dictBest, pos, ok := h.Dict.probeHC(targetTail, maxLen, attempts); ok && dictBest > int(best.Len) {
			best.Len = uint32(dictBest)
			best.OffsetCode = h.Dict.localOffset(w.LowLimit, curr, pos) + sequence.RepMove
		}
	}

	if h.DictMode == DedicatedDictSearch && h.DDSS != nil {
		if dictBest, pos, ok := h.DDSS.Probe(targetTail, maxLen, attempts); ok && dictBest > int(best.Len) {
			best.Len = uint32(dictBest)
			best.OffsetCode = h.DDSS.localOffset(w.LowLimit, curr, pos) + sequence.RepMove
		}
	}

	_ = prevOffsetCode // HC's selection rule has no cost criterion beyond length; kept for interface symmetry with BT.

	return best
}

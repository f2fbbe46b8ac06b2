package matcher

import (
	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

// Row is the row-based match finder (spec §4.4). Positions hashing
// into the same row share a small tag byte; a search first builds a
// bitmask of which slots in the row carry a matching tag (row_mask.go)
// and only pays for a full byte comparison on those hits.
type Row struct {
	positions []window.Position // rowCount*width, row-major
	tags      []byte            // rowCount*width, row-major
	heads     []uint8           // next write slot per row, mod width

	rowLog    uint
	width     uint
	windowLog uint
	minMatch  uint
	searchLog uint

	nextToUpdate window.Position

	Dict     *DictState
	DDSS     *DDSS
	DictMode DictMode
}

// NewRow constructs a Row finder sized from p. The row width is fixed
// at construction (from RowWidth's CPU-feature probe) rather than
// re-probed per search, so a single finder's layout never shifts mid-run.
func NewRow(p Params) *Row {
	rowCount := 1 << p.HashLog
	width := RowWidth()
	return &Row{
		positions: make([]window.Position, rowCount*width),
		tags:      make([]byte, rowCount*width),
		heads:     make([]uint8, rowCount),
		rowLog:    p.HashLog,
		width:     uint(width),
		windowLog: p.WindowLog,
		minMatch:  effectiveMinMatch(p.MinMatch),
		searchLog: p.SearchLog,
		DictMode:  p.DictMode,
	}
}

// rowHash splits a single multiply-shift hash into a row index and an
// 8-bit tag, per spec §4.4.
func (r *Row) rowHash(w *window.Window, pos window.Position) (row uint32, tag byte) {
	full := hashAt(w, pos, r.minMatch, r.rowLog+8)
	return full >> 8, byte(full & 0xFF)
}

// NextToUpdate implements Finder.
func (r *Row) NextToUpdate() window.Position { return r.nextToUpdate }

// SetNextToUpdate implements Finder.
func (r *Row) SetNextToUpdate(p window.Position) { r.nextToUpdate = p }

func (r *Row) insertOne(w *window.Window, pos window.Position) {
	rowIdx, tag := r.rowHash(w, pos)
	base := rowIdx * uint32(r.width)
	slot := uint32(r.heads[rowIdx]) % uint32(r.width)
	r.positions[base+slot] = pos
	r.tags[base+slot] = tag
	r.heads[rowIdx] = uint8((uint32(r.heads[rowIdx]) + 1) % uint32(r.width))
}

// Insert implements Finder.
func (r *Row) Insert(w *window.Window, curr window.Position) {
	for p := r.nextToUpdate; p < curr; p++ {
		r.insertOne(w, p)
	}
	r.nextToUpdate = curr
}

// Search implements Finder.
func (r *Row) Search(w *window.Window, curr window.Position, prevOffsetCode uint32) Result {
	r.Insert(w, curr)

	rowIdx, tag := r.rowHash(w, curr)
	base := rowIdx * uint32(r.width)
	rowTags := r.tags[base : base+uint32(r.width)]
	rowPos := r.positions[base : base+uint32(r.width)]

	targetTail := w.Tail(curr)
	maxLen := len(targetTail)
	lowLimit := w.LowestMatchIndex(curr, r.windowLog)

	mask := computeRowMask(rowTags, tag)
	best := Result{}
	attempts := 1 << r.searchLog

	for attempts > 0 {
		var slot int
		slot, mask = nextSetBit(mask)
		if slot < 0 {
			break
		}
		candidate := rowPos[slot]
		if candidate == 0 || candidate >= curr || candidate < lowLimit {
			continue
		}
		attempts--

		var length int
		if w.InPrefix(candidate) {
			length = w.Count(candidate, curr, curr+window.Position(maxLen))
		} else {
			if commonPrefixLen(w.Tail(candidate), targetTail, 4) == 4 {
				length = w.Count2Segments(curr, candidate, curr+window.Position(maxLen), w.DictLimit, w.DictLimit)
			}
		}
		if length > int(best.Len) {
			best.Len = uint32(length)
			best.OffsetCode = uint32(curr-candidate) + sequence.RepMove
		}
	}

	r.insertOne(w, curr)
	r.nextToUpdate = curr + 1

	if r.DictMode == DictMatchState && r.Dict != nil {
		if dictBest, pos, ok := r.Dict.probeHC(targetTail, maxLen, 1<<r.searchLog); ok && dictBest > int(best.Len) {
			best.Len = uint32(dictBest)
			best.OffsetCode = r.Dict.localOffset(w.LowLimit, curr, pos) + sequence.RepMove
		}
	}

	if r.DictMode == DedicatedDictSearch && r.DDSS != nil {
		if dictBest, pos, ok := r.DDSS.Probe(targetTail, maxLen, 1<<r.searchLog); ok && dictBest > int(best.Len) {
			best.Len = uint32(dictBest)
			best.OffsetCode = r.DDSS.localOffset(w.LowLimit, curr, pos) + sequence.RepMove
		}
	}

	_ = prevOffsetCode

	return best
}

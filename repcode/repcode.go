// Package repcode implements the two-slot recent-offset memory
// described in spec §4.6: a small state machine interleaved into the
// lazy parser so the gain-based preference order between repcodes and
// literal-offset matches is preserved exactly.
package repcode

// RepMove is the constant bias separating repcode offsetCodes (0,1,2)
// from literal-offset offsetCodes (offsetCode - RepMove = offset).
const RepMove = 3

// Pair is the ordered pair (o1, o2) of recent offsets carried across
// sequence emissions within a block. A zero slot means "disabled".
type Pair struct {
	O1, O2 uint32
}

// Saved remembers a slot's value from before it was zeroed by a
// window slide, so it can be restored in the output rep array if the
// block emits no sequence that would otherwise refresh it (spec §4.6
// point 4).
type Saved struct {
	O1, O2 uint32
}

// CaptureSaved snapshots the pair before window-slide zeroing, for use
// as the end-of-block fallback.
func CaptureSaved(p Pair) Saved {
	return Saved{O1: p.O1, O2: p.O2}
}

// ZeroStale zeros any slot whose offset now reaches at or below
// prefixLowestIndex - 1, per spec §4.6 point 1's "not in a forbidden
// just-below-prefix zone" rule restated as plain index comparison
// (see DESIGN.md for the Open Question this resolves).
func (p *Pair) ZeroStale(curr, prefixLowestIndex uint32) {
	if p.O1 != 0 && withinForbiddenZone(curr, p.O1, prefixLowestIndex) {
		p.O1 = 0
	}
	if p.O2 != 0 && withinForbiddenZone(curr, p.O2, prefixLowestIndex) {
		p.O2 = 0
	}
}

func withinForbiddenZone(curr, offset, prefixLowestIndex uint32) bool {
	if offset > curr {
		return true
	}
	repIndex := curr - offset
	return repIndex < prefixLowestIndex
}

// Check implements spec §4.6 point 1: the rep0 test at a parser
// position p against the candidate repIndex = p-o1.
//
// The reference's guard, "(prefixLowestIndex-1) - repIndex >= 3",
// is pointer arithmetic that can underflow; spec §9's Open Questions
// flags it as not to be guessed at. This implementation resolves it
// as the plain index invariant stated in spec §3: a position is only
// reachable if it is >= the window's lowest valid index. Check
// therefore reports ok only when 0 < o1 <= p and repIndex >=
// prefixLowestIndex, i.e. the candidate resolves to a live byte
// rather than one the window has already slid past.
func Check(o1, p, prefixLowestIndex uint32) (repIndex uint32, ok bool) {
	if o1 == 0 || o1 > p {
		return 0, false
	}
	repIndex = p - o1
	return repIndex, repIndex >= prefixLowestIndex
}

// Promote implements spec §4.6 point 2: emitting a non-repcode match
// with offset o advances (o2,o1) <- (o1,o). Emitting rep0 leaves the
// pair unchanged, so callers simply skip calling Promote in that case.
func (p *Pair) Promote(offset uint32) {
	p.O2 = p.O1
	p.O1 = offset
}

// SwapRep1 implements the rep1 promotion: (o1,o2) <- (o2,o1), encoded
// by the parser as offsetCode 1 with zero litLen.
func (p *Pair) SwapRep1() {
	p.O1, p.O2 = p.O2, p.O1
}

// EndOfBlock substitutes saved offsets for any slot that is zero at
// block end (spec §4.6 point 4), returning the pair to write into the
// caller's rep array for the next block.
func (p Pair) EndOfBlock(saved Saved) Pair {
	out := p
	if out.O1 == 0 {
		out.O1 = saved.O1
	}
	if out.O2 == 0 {
		out.O2 = saved.O2
	}
	return out
}

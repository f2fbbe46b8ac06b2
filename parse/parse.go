// Package parse implements the lazy parser described in spec §4.7: the
// main greedy/lazy/lazy2 loop that drives a matcher.Finder and a
// window.Window together, emitting sequences into a sequence.Sink
// while carrying the repcode.Pair across the whole block. Entropy
// coding, framing, and parameter selection are external collaborators'
// concerns (spec §1 Out of scope); this package only decides where
// literals end and matches begin.
package parse

import (
	"github.com/sirupsen/logrus"

	"github.com/dmitrov-oss/zseqcore/matcher"
	"github.com/dmitrov-oss/zseqcore/repcode"
	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

// Log is the parser's logger, silent by default like window.Log.
var Log logrus.FieldLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// offset codes 0,1,2 denote the three repcode slots (rep0, rep1, and
// rep0-1), per sequence.RepMove's bias; anything >= sequence.RepMove
// is a literal offset.
const (
	repCodeRep0    = 0
	repCodeRep1    = 1
	repCodeRep0Dec = 2
)

// Core drives one block's parse. It is not safe for concurrent use;
// construct a fresh Core (or Reset an existing one) per block.
type Core struct {
	Finder   matcher.Finder
	Strategy matcher.Strategy
	MinMatch uint32

	Rep repcode.Pair
}

// New constructs a Core ready to parse a block, seeded with the
// caller's carried-over repcode pair (spec §4.6's cross-block rep
// array).
func New(f matcher.Finder, strategy matcher.Strategy, minMatch uint32, rep repcode.Pair) *Core {
	return &Core{Finder: f, Strategy: strategy, MinMatch: minMatch, Rep: rep}
}

// candidate is an in-flight match proposal: a length and the
// offsetCode that would encode it.
type candidate struct {
	len        uint32
	offsetCode uint32
}

func (c candidate) found(minMatch uint32) bool { return c.len >= minMatch }

// repCandidate evaluates the repcode slots available at ip, preferring
// rep0 over rep1 over rep0-1 on a length tie (cheapest encoding wins),
// per spec §4.6. rep0-1 is only legal immediately after a match (no
// intervening literal), i.e. when ip == litStart.
func (c *Core) repCandidate(w *window.Window, ip, iend, litStart window.Position) candidate {
	low := uint32(w.LowLimit)
	p := uint32(ip)

	best := candidate{}
	try := func(offset, offsetCode uint32) {
		idx, ok := repcode.Check(offset, p, low)
		if !ok {
			return
		}
		l := repMatchLen(w, ip, window.Position(idx), iend)
		if uint32(l) > best.len {
			best = candidate{len: uint32(l), offsetCode: offsetCode}
		}
	}

	try(c.Rep.O1, repCodeRep0)
	try(c.Rep.O2, repCodeRep1)
	if ip == litStart && c.Rep.O1 > 0 {
		try(c.Rep.O1-1, repCodeRep0Dec)
	}
	return best
}

// repMatchLen measures a repcode candidate's match length, resolving
// across the dictLimit boundary when the candidate lives in an
// external dictionary (spec §4.9).
func repMatchLen(w *window.Window, ip, repIndex, iend window.Position) int {
	if w.InPrefix(repIndex) {
		return w.Count(ip, repIndex, iend)
	}
	return w.Count2Segments(ip, repIndex, iend, w.DictLimit, w.DictLimit)
}

// matchIndex resolves a chosen offsetCode back to the absolute
// position of the match it names, so catch-up can walk backward from
// it.
func (c *Core) matchIndex(ip window.Position, offsetCode uint32) window.Position {
	switch offsetCode {
	case repCodeRep0:
		return ip - window.Position(c.Rep.O1)
	case repCodeRep1:
		return ip - window.Position(c.Rep.O2)
	case repCodeRep0Dec:
		return ip - window.Position(c.Rep.O1-1)
	default:
		offset, _ := sequence.DecodeOffset(offsetCode)
		return ip - window.Position(offset)
	}
}

// applyRep updates the carried repcode pair after emitting a sequence
// with the given offsetCode, per spec §4.6 point 2.
func (c *Core) applyRep(offsetCode uint32) {
	switch offsetCode {
	case repCodeRep0:
		// rep0 repeated verbatim: pair unchanged.
	case repCodeRep1:
		c.Rep.SwapRep1()
	case repCodeRep0Dec:
		c.Rep.Promote(c.Rep.O1 - 1)
	default:
		offset, _ := sequence.DecodeOffset(offsetCode)
		c.Rep.Promote(offset)
	}
}

// searchAt runs the finder at p and folds in the repcode candidate,
// returning whichever is longer (repcode preferred on a tie, since it
// costs fewer bits to encode).
func (c *Core) searchAt(w *window.Window, p, iend, litStart window.Position) candidate {
	m := c.Finder.Search(w, p, sequence.EncodeOffset(c.Rep.O1))
	best := candidate{len: m.Len, offsetCode: m.OffsetCode}

	rep := c.repCandidate(w, p, iend, litStart)
	if rep.len >= best.len && rep.len >= c.MinMatch {
		best = rep
	}
	return best
}

// Parse consumes w's bytes from ip to iend, appending sequences to
// sink, and returns the anchor: the position just past the last
// emitted sequence (ip itself when no sequence was emitted). The bytes
// from the anchor to iend are the trailing literal run, left for the
// caller to emit.
//
// At entry, any carried-over repcode invalidated by a window slide
// since the previous block is zeroed (spec §4.6 point 4); at exit, any
// slot still zero (because this block never emitted a sequence that
// would refresh it) has its pre-slide value restored, so a dormant
// repcode can resurface in a later block instead of staying lost.
func (c *Core) Parse(w *window.Window, ip, iend window.Position, sink sequence.Sink) window.Position {
	Log.WithFields(logrus.Fields{"ip": ip, "iend": iend}).Debug("block entry")
	saved := repcode.CaptureSaved(c.Rep)
	c.Rep.ZeroStale(uint32(ip), uint32(w.LowLimit))
	defer func() {
		c.Rep = c.Rep.EndOfBlock(saved)
		Log.WithFields(logrus.Fields{"rep0": c.Rep.O1, "rep1": c.Rep.O2}).Debug("block exit")
	}()

	if iend < ip+window.Position(c.MinMatch) {
		return ip
	}
	ilimit := iend - window.Position(c.MinMatch-1)
	litStart := ip

	for ip < ilimit {
		best := c.searchAt(w, ip, iend, litStart)

		if !best.found(c.MinMatch) {
			ip++
			continue
		}

		if c.Strategy != matcher.Greedy {
			ip, best = c.lazyLookahead(w, ip, iend, ilimit, litStart, best)
		}

		// Catch-up: extend the match backward into the literal run
		// preceding it while the bytes agree (spec §4.7 step 5).
		mIdx := c.matchIndex(ip, best.offsetCode)
		for ip > litStart && mIdx > w.LowLimit && w.ByteAt(ip-1) == w.ByteAt(mIdx-1) {
			ip--
			mIdx--
			best.len++
		}

		litLen := uint32(ip - litStart)
		sequence.Emit(sink, litLen, best.len, c.MinMatch, best.offsetCode)
		c.applyRep(best.offsetCode)

		ip += window.Position(best.len)
		litStart = ip
		c.Finder.Insert(w, ip)
	}

	return litStart
}

// gain estimates a candidate's coding benefit the way spec §4.7's
// cost-based arbitration does (zstd_lazy.c's gain1/gain2 bookkeeping):
// length scaled by mult, taxed by the number of bits a larger offset
// costs to encode. Repcodes are passed offset 0 (HighBit(1) == 0), so
// their gain reduces to plain length*mult, matching the reference's
// treatment of a repeat match as effectively free to address.
func gain(length, offset uint32, mult int) int {
	return int(length)*mult - matcher.HighBit(offset+1)
}

// rawOffset resolves cand's offsetCode at ip back to the raw distance
// HighBit taxes, whether cand is a repcode or a literal offset.
func (c *Core) rawOffset(ip window.Position, cand candidate) uint32 {
	return uint32(ip - c.matchIndex(ip, cand.offsetCode))
}

// repeatCandidate re-checks rep0 alone at p, the way zstd_lazy.c's
// lookahead rounds only retry rep[0] (not rep1/rep0-1) at each deeper
// position.
func (c *Core) repeatCandidate(w *window.Window, p, iend, litStart window.Position) (candidate, bool) {
	idx, ok := repcode.Check(c.Rep.O1, uint32(p), uint32(w.LowLimit))
	if !ok {
		return candidate{}, false
	}
	l := uint32(repMatchLen(w, p, window.Position(idx), iend))
	if l < c.MinMatch {
		return candidate{}, false
	}
	return candidate{len: l, offsetCode: repCodeRep0}, true
}

// lazyLookahead implements the lazy/lazy2 strategies' one- or
// two-step peek-ahead (spec §4.7 steps 4-5): at each deeper position,
// an immediate rep0 retry and a full search both compete against the
// running candidate under gain, not raw length, restating
// zstd_lazy.c:1679-1741's gain1/gain2 arbitration (multipliers 3/4 at
// depth one, 4/7 at depth two, matching the reference's bias toward
// trusting a deeper candidate more as it gets confirmed twice).
func (c *Core) lazyLookahead(w *window.Window, ip, iend, ilimit, litStart window.Position, best candidate) (window.Position, candidate) {
	if c.Strategy == matcher.Greedy || ip+1 >= ilimit {
		return ip, best
	}

	step1 := ip + 1
	if rep, ok := c.repeatCandidate(w, step1, iend, litStart); ok {
		if gain(rep.len, 0, 3) > gain(best.len, c.rawOffset(ip, best), 3)+1 {
			return step1, rep
		}
	}

	next := c.searchAt(w, step1, iend, litStart)
	if !next.found(c.MinMatch) || gain(next.len, c.rawOffset(step1, next), 4) <= gain(best.len, c.rawOffset(ip, best), 4)+4 {
		return ip, best
	}
	ip, best = step1, next

	if c.Strategy != matcher.Lazy2 || ip+1 >= ilimit {
		return ip, best
	}

	step2 := ip + 1
	if rep, ok := c.repeatCandidate(w, step2, iend, litStart); ok {
		if gain(rep.len, 0, 4) > gain(best.len, c.rawOffset(ip, best), 4)+1 {
			return step2, rep
		}
	}

	next2 := c.searchAt(w, step2, iend, litStart)
	if next2.found(c.MinMatch) && gain(next2.len, c.rawOffset(step2, next2), 7) > gain(best.len, c.rawOffset(ip, best), 7)+3 {
		ip, best = step2, next2
	}
	return ip, best
}

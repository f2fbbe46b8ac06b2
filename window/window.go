// Package window implements the position/index model that the match
// finders and the lazy parser share: a monotone 32-bit position space
// resolved to physical bytes through either the current prefix buffer
// or a detached dictionary buffer.
package window

import "github.com/sirupsen/logrus"

// Position is a 32-bit monotone index into the logical input stream.
// It is relative to a stable logical base, not to any particular Go
// slice; Window.ByteAt resolves it to a physical byte.
type Position uint32

// StartIndex is the lowest position a freshly-constructed Window ever
// assigns to real content. Position 0 is reserved and never addressed
// by ByteAt/Tail; the match finders in package matcher rely on this to
// use 0 as their "no candidate" sentinel in hash and chain tables,
// mirroring the reference implementation's reserved window-start
// index.
const StartIndex Position = 1

// Log is the logger used for window-slide tracing. Callers may
// replace it; it defaults to a silent logger so
// the package stays quiet unless the caller opts in.
var Log logrus.FieldLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// Window holds the byte buffers and boundary positions described in
// spec §3. For any valid position p, p >= LowLimit; a lookup uses
// Base when p >= DictLimit, else DictBase. DictLimit >= LowLimit.
// Positions in [LowLimit, DictLimit) form the external-dictionary
// region; positions in [DictLimit, NextSrc) form the current prefix.
type Window struct {
	// Base holds the current prefix bytes. Base[p-DictLimit] is the
	// byte at absolute position p, for DictLimit <= p < NextSrc.
	Base []byte

	// DictBase holds the external-dictionary bytes, if any.
	// DictBase[p-dictStart] is the byte at absolute position p, for
	// LowLimit <= p < DictLimit, where dictStart = DictLimit -
	// len(DictBase).
	DictBase []byte

	DictLimit     Position
	LowLimit      Position
	NextSrc       Position
	LoadedDictEnd Position
}

// dictStart is the absolute position of DictBase[0].
func (w *Window) dictStart() Position {
	return w.DictLimit - Position(len(w.DictBase))
}

// InPrefix reports whether p addresses the current prefix buffer
// rather than the external-dictionary buffer.
func (w *Window) InPrefix(p Position) bool {
	return p >= w.DictLimit
}

// ByteAt resolves p to a physical byte. The caller must ensure
// w.LowLimit <= p < w.NextSrc; out-of-range positions are a
// precondition violation, not a recoverable error, per spec §7.
func (w *Window) ByteAt(p Position) byte {
	if w.InPrefix(p) {
		return w.Base[p-w.DictLimit]
	}
	return w.DictBase[p-w.dictStart()]
}

// Tail returns the byte slice starting at position p and running to
// the end of whichever buffer p lives in (the prefix end at NextSrc,
// or the dictionary end at DictLimit). Callers that need to cross the
// dictLimit boundary must use Count2Segments instead.
func (w *Window) Tail(p Position) []byte {
	if w.InPrefix(p) {
		return w.Base[p-w.DictLimit:]
	}
	return w.DictBase[p-w.dictStart():]
}

// LowestMatchIndex returns the lowest position a match finder may
// consider a candidate at, per spec §4.1: max(lowLimit, curr -
// (1<<windowLog)) unless a dictionary has been loaded into the
// window, in which case candidates may reach back to LowLimit.
func (w *Window) LowestMatchIndex(curr Position, windowLog uint) Position {
	if w.LoadedDictEnd != 0 {
		return w.LowLimit
	}
	span := Position(1) << windowLog
	if curr <= span {
		return w.LowLimit
	}
	lo := curr - span
	if lo < w.LowLimit {
		return w.LowLimit
	}
	return lo
}

// Count returns the length of the common prefix of the byte ranges
// starting at positions a and b, bounded by end-a. a and b may each
// resolve into either the prefix or the dictionary buffer
// independently; ByteAt's resolution handles that per position. This
// is spec §4.1's count(a,b,end).
func (w *Window) Count(a, b, end Position) int {
	sa := w.Tail(a)
	sb := w.Tail(b)
	limit := int(end - a)
	if limit > len(sa) {
		limit = len(sa)
	}
	if limit > len(sb) {
		limit = len(sb)
	}
	n := 0
	for n < limit && sa[n] == sb[n] {
		n++
	}
	return n
}

// Count2Segments continues a match between current position a (in the
// prefix) and candidate position b (in the dictionary) across the
// dictLimit boundary: it counts their common prefix up to endA or
// until the dictionary side reaches dictEnd, and if the dictionary
// side was the one that ran out, continues the comparison from
// prefixStart onward, per spec §4.1.
func (w *Window) Count2Segments(a, b, endA, dictEnd, prefixStart Position) int {
	n := w.Count(a, b, endA)
	if b+Position(n) != dictEnd {
		// Mismatch found before the dictionary side ran out.
		return n
	}
	n2 := w.Count(a+Position(n), prefixStart, endA)
	return n + n2
}

// Slide advances LowLimit (and, when the caller is dropping dead
// dictionary bytes entirely, DictLimit) as the window moves forward.
// Positions below the new LowLimit become unreachable; callers must
// not hand out offsets that resolve below it afterwards.
func (w *Window) Slide(newLowLimit Position) {
	if newLowLimit <= w.LowLimit {
		return
	}
	Log.WithFields(logrus.Fields{
		"from": w.LowLimit,
		"to":   newLowLimit,
	}).Debug("window slide")
	w.LowLimit = newLowLimit
	if w.DictLimit < w.LowLimit {
		w.DictLimit = w.LowLimit
	}
}

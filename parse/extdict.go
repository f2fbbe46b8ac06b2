package parse

import (
	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

// ParseExtDict runs the same lazy-parse loop as Parse, for the
// external-dictionary configuration of spec §4.9. The loop itself is
// identical: window.Window already resolves positions on either side
// of DictLimit transparently (ByteAt, Tail, Count2Segments), and
// repMatchLen already falls back to Count2Segments for a candidate
// that lives in the dictionary half. The one thing this entry point
// adds is a check that the window actually has a loaded dictionary
// attached: when it does not, it logs a warning and parses anyway,
// since the matcher/repcode forbidden-zone checks use w.LowLimit as
// the reachability floor either way.
func (c *Core) ParseExtDict(w *window.Window, ip, iend window.Position, sink sequence.Sink) window.Position {
	if w.LoadedDictEnd == 0 {
		Log.Warn("ParseExtDict called without a loaded dictionary; falling back to prefix-only parsing")
	}
	return c.Parse(w, ip, iend, sink)
}

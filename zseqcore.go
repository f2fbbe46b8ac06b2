// Package zseqcore implements the match-finding and lazy-parsing core
// of an LZ77-family sequence producer: the window/position model,
// hash-chain, binary-tree, and row-based match finders, the
// dedicated-dictionary-search side arm, the repcode engine, and the
// lazy parser built on top of them. Entropy coding, frame/block
// framing, compression-parameter selection from a level, and
// dictionary digestion from raw bytes into cParams are external
// collaborators' concerns.
package zseqcore

import (
	"github.com/sirupsen/logrus"

	"github.com/dmitrov-oss/zseqcore/window"
)

// Version identifies this module's release.
const Version = "0.1.0"

// Log is the package-level logger for dictionary attachment tracing
// (MatchState.AttachDict). Silent by default, like window.Log
// and parse.Log.
var Log logrus.FieldLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// NewWindow builds a prefix-only Window over src, reserving position 0
// per window.StartIndex so the match finders' zero-valued hash and
// chain table entries unambiguously mean "no candidate".
func NewWindow(src []byte) *window.Window {
	return &window.Window{
		Base:      src,
		DictLimit: window.StartIndex,
		LowLimit:  window.StartIndex,
		NextSrc:   window.StartIndex + window.Position(len(src)),
	}
}

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrov-oss/zseqcore/matcher"
	"github.com/dmitrov-oss/zseqcore/repcode"
	"github.com/dmitrov-oss/zseqcore/sequence"
	"github.com/dmitrov-oss/zseqcore/window"
)

func prefixWindow(data []byte) *window.Window {
	return &window.Window{
		Base:      data,
		DictLimit: window.StartIndex,
		LowLimit:  window.StartIndex,
		NextSrc:   window.StartIndex + window.Position(len(data)),
	}
}

// decodeSequences reconstructs the bytes a sequence stream encodes,
// replaying the same repcode promotion rules Core.applyRep uses on the
// encode side so offsetCode 0/1/2 resolve identically. Used to check
// spec §8 invariant 1 (round-trip exactness) end to end.
func decodeSequences(t *testing.T, source []byte, seqs []sequence.Sequence, minMatch uint32) []byte {
	t.Helper()
	out := make([]byte, 0, len(source))
	srcPos := 0
	var rep repcode.Pair

	for _, s := range seqs {
		require.LessOrEqual(t, srcPos+int(s.LitLength), len(source))
		out = append(out, source[srcPos:srcPos+int(s.LitLength)]...)
		srcPos += int(s.LitLength)

		matchLen := int(s.MatchLenBase + minMatch)
		var offset uint32
		switch s.OffsetCode {
		case repCodeRep0:
			offset = rep.O1
		case repCodeRep1:
			offset = rep.O2
			rep.SwapRep1()
		case repCodeRep0Dec:
			offset = rep.O1 - 1
			rep.Promote(offset)
		default:
			offset, _ = sequence.DecodeOffset(s.OffsetCode)
			rep.Promote(offset)
		}

		require.Greater(t, offset, uint32(0), "offset must resolve to a positive distance")
		matchStart := len(out) - int(offset)
		require.GreaterOrEqual(t, matchStart, 0, "match must reference already-decoded output")
		for i := 0; i < matchLen; i++ {
			out = append(out, out[matchStart+i])
		}
		srcPos += matchLen
	}
	return out
}

func TestParseRoundTripsArbitraryText(t *testing.T) {
	data := []byte("the quick brown fox the quick brown fox jumps over the lazy dog the quick brown fox")
	w := prefixWindow(data)
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 4})
	core := New(finder, matcher.Lazy, 4, repcode.Pair{})

	sink := &sequence.SliceSink{}
	ip := window.StartIndex
	iend := window.StartIndex + window.Position(len(data))
	stop := core.Parse(w, ip, iend, sink)
	require.NotEmpty(t, sink.Sequences)

	got := decodeSequences(t, data, sink.Sequences, 4)
	require.Equal(t, int(stop-window.StartIndex), len(got))
	got = append(got, data[len(got):]...)
	assert.Equal(t, data, got)
}

func TestParseLazy2RoundTripsArbitraryText(t *testing.T) {
	data := []byte("mississippi river mississippi delta missed the mist entirely, a misty mistake in the mist")
	w := prefixWindow(data)
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 4})
	core := New(finder, matcher.Lazy2, 4, repcode.Pair{})

	sink := &sequence.SliceSink{}
	ip := window.StartIndex
	iend := window.StartIndex + window.Position(len(data))
	stop := core.Parse(w, ip, iend, sink)

	got := decodeSequences(t, data, sink.Sequences, 4)
	require.Equal(t, int(stop-window.StartIndex), len(got))
	got = append(got, data[len(got):]...)
	assert.Equal(t, data, got)
}

// TestParseGreedyABCRepeatMatchesSpecExample exercises spec §8's
// literal example directly: "ABCABCABCABC" under greedy parsing
// should yield exactly one sequence, 3 literals followed by a
// length-9, offset-3 match.
func TestParseGreedyABCRepeatMatchesSpecExample(t *testing.T) {
	data := []byte("ABCABCABCABC")
	w := prefixWindow(data)
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 3})
	core := New(finder, matcher.Greedy, 3, repcode.Pair{})

	sink := &sequence.SliceSink{}
	ip := window.StartIndex
	iend := window.StartIndex + window.Position(len(data))
	stop := core.Parse(w, ip, iend, sink)

	require.Len(t, sink.Sequences, 1)
	seq := sink.Sequences[0]
	assert.Equal(t, uint32(3), seq.LitLength)
	assert.Equal(t, uint32(9), seq.MatchLenBase+3)
	assert.Equal(t, sequence.EncodeOffset(3), seq.OffsetCode)

	got := decodeSequences(t, data, sink.Sequences, 3)
	require.Equal(t, int(stop-window.StartIndex), len(got))
	got = append(got, data[len(got):]...)
	assert.Equal(t, data, got)
}

func TestParseGreedyEmitsLiteralsThenMatch(t *testing.T) {
	data := []byte("the quick brown fox the quick brown fox jumps over")
	w := prefixWindow(data)
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 4})
	core := New(finder, matcher.Greedy, 4, repcode.Pair{})

	sink := &sequence.SliceSink{}
	ip := window.StartIndex
	iend := window.StartIndex + window.Position(len(data))

	stop := core.Parse(w, ip, iend, sink)
	require.LessOrEqual(t, int(stop), int(iend))
	require.NotEmpty(t, sink.Sequences)

	var totalLitLen, totalMatchLen uint32
	for _, s := range sink.Sequences {
		totalLitLen += s.LitLength
		totalMatchLen += s.MatchLenBase + 4
	}
	assert.LessOrEqual(t, totalLitLen+totalMatchLen, uint32(len(data)))
	assert.Greater(t, totalMatchLen, uint32(0), "expected at least one match in the repeated phrase")
}

func TestParseLazyPrefersLongerNextMatch(t *testing.T) {
	// At the second "abcdefgh", ip itself only matches "abcd" (length 4,
	// offset 23), while ip+1 matches "bcdefgh" (length 7, offset 19):
	// the lazy strategy should skip one more literal and take the longer
	// match starting one byte on.
	data := []byte("abcdQbcdefghQ0123456789abcdefghZ")
	w := prefixWindow(data)
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 4})
	core := New(finder, matcher.Lazy, 4, repcode.Pair{})

	sink := &sequence.SliceSink{}
	ip := window.StartIndex
	iend := window.StartIndex + window.Position(len(data))
	core.Parse(w, ip, iend, sink)

	require.Len(t, sink.Sequences, 1)
	seq := sink.Sequences[0]
	assert.Equal(t, uint32(24), seq.LitLength, "match should start at the 'b' one byte after the second 'a'")
	assert.Equal(t, uint32(7), seq.MatchLenBase+4)
	assert.Equal(t, sequence.EncodeOffset(19), seq.OffsetCode)
}

func TestParseZeroesStaleRepAndRestoresAtBlockEnd(t *testing.T) {
	// A window positioned as if it had slid since the carried-over rep
	// was recorded: rep.O1 = 5 resolves to a position below the new
	// LowLimit, so it must be treated as stale at block entry (spec
	// §4.6 point 4) and, since this block's unique-byte content never
	// refreshes O1, restored to its pre-slide value at block end.
	data := []byte("qwertyuiopasdfghjklzxcvbnm0123456789")
	w := &window.Window{
		Base:      data,
		DictLimit: 100,
		LowLimit:  100,
		NextSrc:   100 + window.Position(len(data)),
	}
	finder := matcher.NewHC(matcher.Params{WindowLog: 20, ChainLog: 10, HashLog: 10, SearchLog: 8, MinMatch: 4})
	core := New(finder, matcher.Greedy, 4, repcode.Pair{O1: 5})

	sink := &sequence.SliceSink{}
	core.Parse(w, window.Position(100), window.Position(100)+window.Position(len(data)), sink)

	assert.Empty(t, sink.Sequences, "unique-byte content should emit no matches")
	assert.Equal(t, uint32(5), core.Rep.O1, "stale rep0 should be restored at block end since nothing else refreshed it")
}

func TestApplyRepUpdatesPairPerOffsetCode(t *testing.T) {
	c := &Core{Rep: repcode.Pair{O1: 10, O2: 20}}

	c.applyRep(repCodeRep1)
	assert.Equal(t, uint32(20), c.Rep.O1)
	assert.Equal(t, uint32(10), c.Rep.O2)

	c.Rep = repcode.Pair{O1: 10, O2: 20}
	c.applyRep(sequence.EncodeOffset(99))
	assert.Equal(t, uint32(99), c.Rep.O1)
	assert.Equal(t, uint32(10), c.Rep.O2)
}

func TestMatchIndexResolvesEachOffsetCodeKind(t *testing.T) {
	c := &Core{Rep: repcode.Pair{O1: 5, O2: 9}}
	ip := window.Position(100)

	assert.Equal(t, window.Position(95), c.matchIndex(ip, repCodeRep0))
	assert.Equal(t, window.Position(91), c.matchIndex(ip, repCodeRep1))
	assert.Equal(t, window.Position(96), c.matchIndex(ip, repCodeRep0Dec))
	assert.Equal(t, window.Position(70), c.matchIndex(ip, sequence.EncodeOffset(30)))
}

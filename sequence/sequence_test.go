package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeOffsetRoundTrip(t *testing.T) {
	for _, offset := range []uint32{1, 2, 65535, 1 << 20} {
		code := EncodeOffset(offset)
		got, isLiteral := DecodeOffset(code)
		require.True(t, isLiteral)
		require.Equal(t, offset, got)
	}
}

func TestDecodeOffsetRepcodeSlots(t *testing.T) {
	for code := uint32(0); code < RepMove; code++ {
		_, isLiteral := DecodeOffset(code)
		require.False(t, isLiteral)
	}
}

func TestEmitAppliesMinMatchBias(t *testing.T) {
	sink := &SliceSink{}
	Emit(sink, 5, 9, 3, EncodeOffset(100))

	require.Len(t, sink.Sequences, 1)
	require.Equal(t, Sequence{LitLength: 5, MatchLenBase: 6, OffsetCode: 103}, sink.Sequences[0])
}

package zseqcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrov-oss/zseqcore/matcher"
	"github.com/dmitrov-oss/zseqcore/repcode"
)

func defaultParams() matcher.Params {
	return matcher.Params{
		WindowLog: 20,
		ChainLog:  12,
		HashLog:   12,
		SearchLog: 6,
		MinMatch:  4,
		Strategy:  matcher.Lazy,
		Method:    matcher.MethodHC,
	}
}

func TestValidateAcceptsDefaultParams(t *testing.T) {
	assert.NoError(t, Validate(defaultParams()))
}

func TestValidateRejectsMinMatch7(t *testing.T) {
	p := defaultParams()
	p.MinMatch = 7
	assert.ErrorIs(t, Validate(p), ErrInvalidMinMatch)
}

func TestValidateRejectsDDSSWithBT(t *testing.T) {
	p := defaultParams()
	p.Method = matcher.MethodBT
	p.DictMode = matcher.DedicatedDictSearch
	assert.ErrorIs(t, Validate(p), ErrIllegalDictMode)
}

func TestValidateRejectsOutOfRangeWindowLog(t *testing.T) {
	p := defaultParams()
	p.WindowLog = 2
	assert.ErrorIs(t, Validate(p), ErrInvalidWindowLog)
}

func TestNewMatchStateDispatchesPerMethod(t *testing.T) {
	for _, method := range []matcher.SearchMethod{matcher.MethodHC, matcher.MethodBT, matcher.MethodRow} {
		p := defaultParams()
		p.Method = method
		ms, err := NewMatchState(p, repcode.Pair{})
		require.NoError(t, err)
		require.NotNil(t, ms.Finder)
		require.NotNil(t, ms.Core)
	}
}

func TestNewMatchStateRejectsInvalidParams(t *testing.T) {
	p := defaultParams()
	p.HashLog = 0
	_, err := NewMatchState(p, repcode.Pair{})
	assert.ErrorIs(t, err, ErrInvalidHashLog)
}

func TestAttachDictWiresHCDictMatchState(t *testing.T) {
	p := defaultParams()
	p.DictMode = matcher.DictMatchState
	ms, err := NewMatchState(p, repcode.Pair{})
	require.NoError(t, err)

	dict := []byte("the quick brown fox jumps over the lazy dog, repeatedly and at length")
	require.NoError(t, ms.AttachDict(dict))

	hc, ok := ms.Finder.(*matcher.HC)
	require.True(t, ok)
	assert.NotNil(t, hc.Dict)
}

func TestAttachDictWiresBTDictMatchState(t *testing.T) {
	p := defaultParams()
	p.Method = matcher.MethodBT
	p.DictMode = matcher.DictMatchState
	ms, err := NewMatchState(p, repcode.Pair{})
	require.NoError(t, err)

	dict := []byte("the quick brown fox jumps over the lazy dog, repeatedly and at length")
	require.NoError(t, ms.AttachDict(dict))

	bt, ok := ms.Finder.(*matcher.BT)
	require.True(t, ok)
	assert.NotNil(t, bt.Dict)
}

func TestAttachDictWiresDDSSOnHCAndRow(t *testing.T) {
	for _, method := range []matcher.SearchMethod{matcher.MethodHC, matcher.MethodRow} {
		p := defaultParams()
		p.Method = method
		p.DictMode = matcher.DedicatedDictSearch
		ms, err := NewMatchState(p, repcode.Pair{})
		require.NoError(t, err)

		dict := []byte("the quick brown fox jumps over the lazy dog, repeatedly and at length")
		require.NoError(t, ms.AttachDict(dict))

		var ddss *matcher.DDSS
		switch f := ms.Finder.(type) {
		case *matcher.HC:
			ddss = f.DDSS
		case *matcher.Row:
			ddss = f.DDSS
		}
		assert.NotNil(t, ddss)
	}
}

func TestAttachDictNoDictModeIsNoop(t *testing.T) {
	p := defaultParams()
	ms, err := NewMatchState(p, repcode.Pair{})
	require.NoError(t, err)
	assert.NoError(t, ms.AttachDict([]byte("unused")))
}

func TestNewWindowReservesStartIndex(t *testing.T) {
	w := NewWindow([]byte("hello"))
	assert.EqualValues(t, 1, w.LowLimit)
	assert.EqualValues(t, 1, w.DictLimit)
}

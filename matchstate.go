package zseqcore

import (
	"github.com/dmitrov-oss/zseqcore/matcher"
	"github.com/dmitrov-oss/zseqcore/parse"
	"github.com/dmitrov-oss/zseqcore/repcode"
)

// MatchState bundles a concrete matcher.Finder with the lazy parser
// driving it, mirroring how the teacher's top-level compressor type
// owns both its match-finder tables and its parse loop behind one
// handle (spec §5's MatchState type).
type MatchState struct {
	Params matcher.Params
	Finder matcher.Finder
	Core   *parse.Core
}

// NewMatchState validates p and constructs the Finder its Method
// selects (spec §4.8), wiring it into a fresh parse.Core seeded with
// rep. Use AttachDict afterward to add dictionary support; p.DictMode
// only records which dictionary arm a subsequent AttachDict call must
// use; it constructs no dictionary state by itself.
func NewMatchState(p matcher.Params, rep repcode.Pair) (*MatchState, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	var finder matcher.Finder
	switch p.Method {
	case matcher.MethodHC:
		finder = matcher.NewHC(p)
	case matcher.MethodBT:
		finder = matcher.NewBT(p)
	case matcher.MethodRow:
		finder = matcher.NewRow(p)
	default:
		return nil, ErrUnknownSearchMethod
	}

	core := parse.New(finder, p.Strategy, uint32(p.MinMatch), rep)

	return &MatchState{
		Params: p,
		Finder: finder,
		Core:   core,
	}, nil
}

// AttachDict digests dictBytes per ms.Params.DictMode and wires the
// result into ms.Finder's dictionary-extension fields (spec §4.8).
// ExtDict and NoDict need no digestion here: ExtDict's addressing is
// resolved transparently by the Window passed to Core.Parse /
// Core.ParseExtDict (spec §2's two-segment addressing), and NoDict has
// no dictionary arm to wire.
func (ms *MatchState) AttachDict(dictBytes []byte) error {
	Log.Debugf("attach dictionary: mode=%d, %d bytes", ms.Params.DictMode, len(dictBytes))
	switch ms.Params.DictMode {
	case matcher.NoDict, matcher.ExtDict:
		return nil

	case matcher.DictMatchState:
		switch f := ms.Finder.(type) {
		case *matcher.HC:
			f.Dict = matcher.BuildDictHC(dictBytes, ms.Params)
		case *matcher.Row:
			f.Dict = matcher.BuildDictHC(dictBytes, ms.Params)
		case *matcher.BT:
			f.Dict = matcher.BuildDictBT(dictBytes, ms.Params)
		default:
			return ErrUnknownSearchMethod
		}
		return nil

	case matcher.DedicatedDictSearch:
		if ms.Params.Method == matcher.MethodBT {
			return ErrIllegalDictMode
		}
		switch f := ms.Finder.(type) {
		case *matcher.HC:
			f.DDSS = matcher.BuildDDSS(dictBytes, ms.Params)
		case *matcher.Row:
			f.DDSS = matcher.BuildDDSS(dictBytes, ms.Params)
		default:
			return ErrUnknownSearchMethod
		}
		return nil

	default:
		return ErrIllegalDictMode
	}
}

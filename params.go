package zseqcore

import (
	"github.com/dmitrov-oss/zseqcore/matcher"
)

// Validate checks p against the legal ranges spec §6 lists for cParams
// and the DictMode/SearchMethod legality matrix from spec §4.8. It
// deliberately does not clamp or repair anything: a caller constructing
// MatchState from untrusted or externally-derived parameters should see
// the specific error rather than silently-adjusted behavior.
func Validate(p matcher.Params) error {
	if p.WindowLog < 10 || p.WindowLog > 31 {
		return ErrInvalidWindowLog
	}
	if p.HashLog < 6 || p.HashLog > 30 {
		return ErrInvalidHashLog
	}
	if p.ChainLog < 6 || p.ChainLog > 30 {
		return ErrInvalidChainLog
	}
	if p.SearchLog < 1 || p.SearchLog > 10 {
		return ErrInvalidSearchLog
	}
	switch p.MinMatch {
	case 3, 4, 5, 6:
	default:
		// minMatch == 7 included here: spec §9's Open Question is
		// resolved as a hard error rather than the silent 6-byte clamp
		// matcher.effectiveMinMatch applies as an internal defense.
		return ErrInvalidMinMatch
	}

	if p.DictMode == matcher.DedicatedDictSearch && p.Method == matcher.MethodBT {
		return ErrIllegalDictMode
	}

	switch p.Method {
	case matcher.MethodHC, matcher.MethodBT, matcher.MethodRow:
	default:
		return ErrUnknownSearchMethod
	}

	return nil
}

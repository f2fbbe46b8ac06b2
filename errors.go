package zseqcore

import "errors"

// Sentinel errors returned by Validate and NewMatchState. Callers
// should compare with errors.Is rather than matching message text.
var (
	ErrInvalidWindowLog = errors.New("zseqcore: windowLog out of range")
	ErrInvalidHashLog   = errors.New("zseqcore: hashLog out of range")
	ErrInvalidChainLog  = errors.New("zseqcore: chainLog out of range")
	ErrInvalidSearchLog = errors.New("zseqcore: searchLog out of range")

	// ErrInvalidMinMatch covers both out-of-range values and minMatch
	// == 7, which spec §9's Open Question flags as ambiguous in the
	// reference implementation; this module resolves it as a hard
	// validation error rather than silently clamping it to 6 (the
	// clamp still exists internally in matcher.effectiveMinMatch as a
	// defense for any caller that bypasses Validate).
	ErrInvalidMinMatch = errors.New("zseqcore: minMatch must be 3, 4, 5, or 6")

	// ErrIllegalDictMode reports a DictMode/SearchMethod combination
	// outside spec §4.8's legal mode matrix (DedicatedDictSearch is
	// only legal with MethodHC and MethodRow, never MethodBT).
	ErrIllegalDictMode = errors.New("zseqcore: dictMode is not legal for this search method")

	// ErrUnknownSearchMethod reports a matcher.SearchMethod value this
	// module doesn't recognize.
	ErrUnknownSearchMethod = errors.New("zseqcore: unknown search method")
)

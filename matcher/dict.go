package matcher

import (
	"github.com/dmitrov-oss/zseqcore/window"
)

// DictState is a borrowed, read-only sibling match-state built over a
// dictionary's own byte buffer, consulted by HC/BT/Row's "attached
// dictMatchState" side arm (spec §4.2/§4.3/§4.4). It is shared
// read-only across many compressions; a block only ever reads it.
//
// Its positions live in their own little address space, numbered from
// window.StartIndex (not 0), for the same reason a live Window
// reserves position 0: hashTable/chainTable/bt use 0 as the "no
// candidate" sentinel, so a real position can never legitimately be 0.
type DictState struct {
	Bytes     []byte
	HighLimit window.Position // one past the last valid dictionary position
	LowLimit  window.Position

	minMatch   uint
	hashLog    uint
	hashTable  []window.Position
	chainTable []window.Position

	// bt, when non-nil, is the dictionary's own binary tree, used by
	// BT's dictionary-extension arm instead of hashTable/chainTable.
	bt *btTables
}

// dictWindow builds the scratch Window used only while digesting
// dictBytes: a prefix-only window whose positions start at
// window.StartIndex.
func dictWindow(dictBytes []byte) *window.Window {
	return &window.Window{
		Base:      dictBytes,
		DictLimit: window.StartIndex,
		LowLimit:  window.StartIndex,
		NextSrc:   window.StartIndex + window.Position(len(dictBytes)),
	}
}

// byteIndex converts a DictState position back to an index into Bytes.
func (ds *DictState) byteIndex(pos window.Position) int {
	return int(pos - window.StartIndex)
}

// BuildDictHC digests dictBytes into a hash-chain table, the
// dictMatchState side arm HC and Row both consult.
func BuildDictHC(dictBytes []byte, p Params) *DictState {
	ds := &DictState{
		Bytes:     dictBytes,
		HighLimit: window.StartIndex + window.Position(len(dictBytes)),
		LowLimit:  window.StartIndex,
		minMatch:  effectiveMinMatch(p.MinMatch),
		hashLog:   p.HashLog,
	}
	ds.hashTable = make([]window.Position, 1<<p.HashLog)
	ds.chainTable = make([]window.Position, 1<<p.ChainLog)

	w := dictWindow(dictBytes)
	hc := &HC{
		hashTable: ds.hashTable, chainTable: ds.chainTable,
		hashLog: p.HashLog, windowLog: p.WindowLog,
		minMatch: ds.minMatch, searchLog: p.SearchLog,
	}
	hc.Insert(w, ds.HighLimit)
	return ds
}

// probeHC walks the dictionary's hash-chain, matching targetTail
// against dictionary bytes directly (spec §4.2's dictMatchState arm).
func (ds *DictState) probeHC(targetTail []byte, maxLen int, maxAttempts int) (length int, pos window.Position, ok bool) {
	if len(ds.hashTable) == 0 || maxAttempts <= 0 {
		return 0, 0, false
	}
	mask := uint64(1)<<(8*ds.minMatch) - 1
	if ds.minMatch >= 8 {
		mask = ^uint64(0)
	}
	hv := hash(readAt(targetTail, int(ds.minMatch))&mask, ds.hashLog) & uint32(len(ds.hashTable)-1)
	chainMask := uint32(len(ds.chainTable) - 1)

	candidate := ds.hashTable[hv]
	best, bestPos := 0, window.Position(0)

	for attempts := maxAttempts; attempts > 0 && candidate != 0 && candidate < ds.HighLimit && candidate >= ds.LowLimit; attempts-- {
		l := commonPrefixLen(ds.Bytes[ds.byteIndex(candidate):], targetTail, maxLen)
		if l > best {
			best, bestPos = l, candidate
		}
		next := ds.chainTable[uint32(candidate)&chainMask]
		if next >= candidate {
			break
		}
		candidate = next
	}

	return best, bestPos, best > 0
}

// BuildDictBT digests dictBytes into a binary tree, the
// dictMatchState side arm BT consults instead of probeHC.
func BuildDictBT(dictBytes []byte, p Params) *DictState {
	ds := &DictState{
		Bytes:     dictBytes,
		HighLimit: window.StartIndex + window.Position(len(dictBytes)),
		LowLimit:  window.StartIndex,
		minMatch:  effectiveMinMatch(p.MinMatch),
		hashLog:   p.HashLog,
	}
	ds.hashTable = make([]window.Position, 1<<p.HashLog)
	ds.bt = newBTTables(p.ChainLog)

	w := dictWindow(dictBytes)
	bt := &BT{
		tbl: ds.bt, hashTable: ds.hashTable,
		hashLog: p.HashLog, windowLog: p.WindowLog,
		minMatch: ds.minMatch, searchLog: p.SearchLog,
	}
	bt.Insert(w, ds.HighLimit)
	for idx := bt.nextToUpdate - 1; idx >= window.StartIndex; idx-- {
		hv := hashAt(w, idx, bt.minMatch, bt.hashLog) & bt.hashMask()
		bt.sortBucket(w, hv)
	}
	return ds
}

// probeBT mirrors ZSTD_DUBT_findBetterDictMatch (spec §9's
// supplemented BT-dictionary search): it walks the dictionary's own
// binary tree comparing against the live window's bytes at curr,
// since the dictionary tree was built purely over dictionary-local
// positions and never needs catch-up relative to curr.
func (ds *DictState) probeBT(w *window.Window, curr window.Position, minMatch, hashLog, searchLog uint) (length int, pos window.Position, ok bool) {
	if ds.bt == nil || len(ds.hashTable) == 0 {
		return 0, 0, false
	}
	targetTail := w.Tail(curr)
	maxLen := len(targetTail)

	mask := uint64(1)<<(8*minMatch) - 1
	if minMatch >= 8 {
		mask = ^uint64(0)
	}
	hv := hash(readAt(targetTail, int(minMatch))&mask, hashLog) & uint32(len(ds.hashTable)-1)

	candidate := ds.hashTable[hv]
	best, bestPos := 0, window.Position(0)
	attempts := 1 << searchLog

	for attempts > 0 && candidate >= ds.LowLimit && candidate < ds.HighLimit {
		attempts--
		idx := ds.byteIndex(candidate)
		l := commonPrefixLen(ds.Bytes[idx:], targetTail, maxLen)
		if l > best {
			best, bestPos = l, candidate
		}
		slot := uint32(candidate) & ds.bt.mask()
		if l < maxLen && l < len(ds.Bytes)-idx {
			if ds.Bytes[idx+l] < targetTail[l] {
				candidate = ds.bt.larger[slot]
			} else {
				candidate = ds.bt.smaller[slot]
			}
		} else {
			break
		}
	}

	return best, bestPos, best > 0
}

// localOffset expresses a dictionary-local match position in the
// caller's local address space, per spec §4.2's "applying an index
// delta". The dictionary is treated as sitting immediately below the
// current window's lowLimit, so a position dictPos bytes from the
// dictionary's own end maps to a distance of (curr - wLowLimit) +
// (HighLimit - dictPos) from curr.
func (ds *DictState) localOffset(wLowLimit, curr, dictPos window.Position) uint32 {
	distFromEnd := ds.HighLimit - dictPos
	return uint32(curr-wLowLimit) + uint32(distFromEnd)
}

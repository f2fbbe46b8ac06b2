package matcher

import (
	"github.com/dmitrov-oss/zseqcore/window"
)

// ddssBucketSize is the number of slots per DDSS bucket (spec §4.5):
// bucketSize-1 direct body slots plus one packed slot describing the
// tail region.
const ddssBucketSize = 8

// DDSS is the dedicated dictionary search layout (spec §4.5): a
// bucketed hash table, built once at dictionary load, that folds the
// dictionary's regular hash-chain into a compact form legal with
// MethodHC and MethodRow (not MethodBT, per spec §4.8's mode matrix).
//
// Like DictState, its positions are numbered from window.StartIndex
// so that 0 remains a safe "unset" sentinel in body.
type DDSS struct {
	Bytes     []byte
	HighLimit window.Position
	LowLimit  window.Position

	minMatch   uint
	hashLog    uint
	numBuckets int

	// body holds, per bucket, up to ddssBucketSize-1 most-recent
	// positions (most-recent first).
	body []window.Position
	// packed[b] = (chainStart<<8)|chainLen, pointing into tail.
	packed []uint32
	// tail holds the packed chain continuation, up to 255 entries per
	// bucket.
	tail []window.Position
}

func (d *DDSS) byteIndex(pos window.Position) int {
	return int(pos - window.StartIndex)
}

// BuildDDSS folds dictBytes's hash-chain into the bucketed DDSS
// layout. Every position placed in a bucket satisfies pos >=
// dictLowestIndex, per spec §4.5's invariant (dictLowestIndex is
// window.StartIndex here: DDSS is always built over the dictionary's
// own full range).
func BuildDDSS(dictBytes []byte, p Params) *DDSS {
	numBuckets := 1 << p.HashLog
	d := &DDSS{
		Bytes:      dictBytes,
		HighLimit:  window.StartIndex + window.Position(len(dictBytes)),
		LowLimit:   window.StartIndex,
		minMatch:   effectiveMinMatch(p.MinMatch),
		hashLog:    p.HashLog,
		numBuckets: numBuckets,
	}
	d.body = make([]window.Position, numBuckets*(ddssBucketSize-1))
	d.packed = make([]uint32, numBuckets)

	w := dictWindow(dictBytes)
	limit := len(dictBytes) - int(d.minMatch) + 1
	if limit < 0 {
		limit = 0
	}

	lists := make([][]window.Position, numBuckets)
	for i := 0; i < limit; i++ {
		pos := window.StartIndex + window.Position(i)
		hv := hashAt(w, pos, d.minMatch, d.hashLog) & uint32(numBuckets-1)
		lists[hv] = append(lists[hv], pos)
	}

	const maxKeep = ddssBucketSize - 1 + 255
	for b := 0; b < numBuckets; b++ {
		entries := lists[b]
		n := len(entries)
		if n > maxKeep {
			entries = entries[n-maxKeep:]
			n = maxKeep
		}
		// Most-recent-first: entries are in ascending position order,
		// so iterate backward.
		bodyCount := n
		if bodyCount > ddssBucketSize-1 {
			bodyCount = ddssBucketSize - 1
		}
		bodyBase := b * (ddssBucketSize - 1)
		for i := 0; i < bodyCount; i++ {
			d.body[bodyBase+i] = entries[n-1-i]
		}
		tailCount := n - bodyCount
		if tailCount > 255 {
			tailCount = 255
		}
		chainStart := len(d.tail)
		for i := 0; i < tailCount; i++ {
			d.tail = append(d.tail, entries[n-1-bodyCount-i])
		}
		d.packed[b] = (uint32(chainStart) << 8) | uint32(tailCount)
	}

	return d
}

// Probe searches the DDSS layout for the best match against
// targetTail, per spec §4.2's DDSS side arm: up to bucketSize-1 direct
// slots, then the packed tail for up to min(remainingAttempts,
// chainLen) slots. A zero slot terminates the bucket probe early.
func (d *DDSS) Probe(targetTail []byte, maxLen int, maxAttempts int) (length int, pos window.Position, ok bool) {
	if d == nil || maxAttempts <= 0 || len(targetTail) < int(d.minMatch) {
		return 0, 0, false
	}
	mask := uint64(1)<<(8*d.minMatch) - 1
	if d.minMatch >= 8 {
		mask = ^uint64(0)
	}
	v := readAt(targetTail, int(d.minMatch)) & mask
	hv := hash(v, d.hashLog) & uint32(d.numBuckets-1)

	best, bestPos := 0, window.Position(0)
	attempts := maxAttempts
	bodyBase := int(hv) * (ddssBucketSize - 1)

	for i := 0; i < ddssBucketSize-1 && attempts > 0; i++ {
		p := d.body[bodyBase+i]
		if p == 0 {
			break
		}
		l := commonPrefixLen(d.Bytes[d.byteIndex(p):], targetTail, maxLen)
		if l > best {
			best, bestPos = l, p
		}
		attempts--
	}

	packed := d.packed[hv]
	chainStart := int(packed >> 8)
	chainLen := int(packed & 0xFF)
	n := attempts
	if n > chainLen {
		n = chainLen
	}
	for i := 0; i < n; i++ {
		p := d.tail[chainStart+i]
		l := commonPrefixLen(d.Bytes[d.byteIndex(p):], targetTail, maxLen)
		if l > best {
			best, bestPos = l, p
		}
	}

	return best, bestPos, best > 0
}

// localOffset mirrors DictState.localOffset for the DDSS layout.
func (d *DDSS) localOffset(wLowLimit, curr, dictPos window.Position) uint32 {
	distFromEnd := d.HighLimit - dictPos
	return uint32(curr-wLowLimit) + uint32(distFromEnd)
}

package matcher

import "sync"

// rowWidthValue is the number of candidate slots scanned per row (spec
// §4.4): 16 on platforms without a wide SIMD compare, 32 where one is
// available. Detection mirrors the architecture-specific feature
// probes in rowCPUFeatures; the row-hash search itself stays scalar
// (see row_mask.go), since the mask computation is defined to be
// bit-for-bit equivalent regardless of the width chosen here.
var (
	detectRowWidthOnce sync.Once
	rowWidthValue      int
)

// RowWidth returns the auto-detected row width for this process,
// probed once and cached. NewRow always uses this width; Params has no
// field to override it.
func RowWidth() int {
	detectRowWidthOnce.Do(func() {
		if rowCPUFeatures().wide {
			rowWidthValue = 32
		} else {
			rowWidthValue = 16
		}
	})
	return rowWidthValue
}

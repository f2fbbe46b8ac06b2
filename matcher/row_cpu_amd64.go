//go:build amd64
// +build amd64

package matcher

import "golang.org/x/sys/cpu"

// rowFeatures reports the SIMD compare width this process could use
// for the row-hash tag scan, per spec §4.4's width/mask-equivalence
// note. The scan itself (row_mask.go) stays scalar either way; wide
// only changes the row layout (16 vs 32 slots), not the comparison
// semantics.
type rowFeatures struct {
	wide bool
}

func rowCPUFeatures() rowFeatures {
	return rowFeatures{wide: cpu.X86.HasAVX2}
}

//go:build arm64
// +build arm64

package matcher

import "golang.org/x/sys/cpu"

type rowFeatures struct {
	wide bool
}

func rowCPUFeatures() rowFeatures {
	return rowFeatures{wide: cpu.ARM64.HasASIMD}
}

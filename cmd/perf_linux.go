//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
)

// measureInstructions runs f under a CPU instruction counter. When perf
// events are unavailable f still runs and ok is false.
func measureInstructions(f func() error) (count uint64, ok bool, err error) {
	var (
		ran  bool
		fErr error
	)
	pv, perr := perf.CPUInstructions(func() error {
		ran = true
		fErr = f()
		return fErr
	})
	switch {
	case !ran:
		return 0, false, f()
	case fErr != nil:
		return 0, false, fErr
	case perr != nil || pv == nil:
		return 0, false, nil
	}
	return pv.Value, true, nil
}

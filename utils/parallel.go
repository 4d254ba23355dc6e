// Package utils contains small helpers shared by the localization packages.
package utils

import (
	"context"
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be
// useful to set in tests where too much parallelism actually slows tests
// down in aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// RangeWorkFunc does the work for the index range [from, to). It must be
// safe to call from multiple goroutines on disjoint ranges.
type RangeWorkFunc func(from, to int)

// GroupWorkParallel splits [0, totalSize) into up to ParallelFactor
// contiguous chunks and runs work on each chunk in its own goroutine,
// returning once all chunks complete. Work already started is not
// interrupted; the context is only consulted before fan-out.
func GroupWorkParallel(ctx context.Context, totalSize int, work RangeWorkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if totalSize <= 0 {
		return nil
	}
	numGroups := ParallelFactor
	if totalSize < numGroups {
		numGroups = totalSize
	}
	if numGroups == 1 {
		work(0, totalSize)
		return nil
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	var wait sync.WaitGroup
	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		from := groupSize * groupNum
		to := from + groupSize
		if groupNum == numGroups-1 {
			to += extra
		}
		fromCopy, toCopy := from, to
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			work(fromCopy, toCopy)
		})
	}
	wait.Wait()
	return nil
}

package stats

import (
	"sync"
	"time"
)

const statisticRollingWindows = 5

// RunStatistics contains statistics about dispatched units of work
type RunStatistics struct {
	lock                   sync.Mutex
	started                bool
	startTime              time.Time
	unitsSubmitted         int64
	unitsCompleted         int64
	unitsFailed            int64
	recentUnitRuntimes     []int64 // for rolling average of recent unit processing times
	recentUnitRuntimesHead int
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.recentUnitRuntimes = make([]int64, statisticRollingWindows)
	}
}

// SubmitUnit tracks the submission of a unit of work, returning its submission time
func (rs *RunStatistics) SubmitUnit() time.Time {
	rs.Start()
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.unitsSubmitted++
	return time.Now()
}

// EndUnit tracks the completion of a unit of work which began at start
func (rs *RunStatistics) EndUnit(start time.Time, failed bool) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.recentUnitRuntimes[rs.recentUnitRuntimesHead] = time.Since(start).Nanoseconds()
	rs.recentUnitRuntimesHead = (rs.recentUnitRuntimesHead + 1) % len(rs.recentUnitRuntimes)
	rs.unitsCompleted++
	if failed {
		rs.unitsFailed++
	}
}

// GetStartTime returns the time at which the first unit was submitted
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetNumUnitsSubmitted returns the number of units submitted so far
func (rs *RunStatistics) GetNumUnitsSubmitted() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.unitsSubmitted
}

// GetNumUnitsCompleted returns the number of units which have completed so far, successfully or not
func (rs *RunStatistics) GetNumUnitsCompleted() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.unitsCompleted
}

// GetNumUnitsFailed returns the number of units which have failed so far
func (rs *RunStatistics) GetNumUnitsFailed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.unitsFailed
}

// GetCurrentUnitProcessingTime returns a rolling average of unit processing time
func (rs *RunStatistics) GetCurrentUnitProcessingTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total int64
	n := rs.unitsCompleted
	if n > statisticRollingWindows {
		n = statisticRollingWindows
	}
	if n == 0 {
		return 0
	}
	for _, d := range rs.recentUnitRuntimes {
		total += d
	}
	return time.Duration(total / n)
}

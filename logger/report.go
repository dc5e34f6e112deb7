package logger

import (
	"sort"
	"sync"
	"sync/atomic"
)

type componentStat struct {
	warns  int64
	errors int64
}

// ComponentReport is a snapshot of the warnings and errors logged by one component.
type ComponentReport struct {
	Component string
	Warns     int64
	Errors    int64
}

var components sync.Map // map[string]*componentStat

func statFor(component string) *componentStat {
	v, _ := components.LoadOrStore(component, &componentStat{})
	return v.(*componentStat)
}

func recordWarn(component string) {
	atomic.AddInt64(&statFor(component).warns, 1)
}

func recordError(component string) {
	atomic.AddInt64(&statFor(component).errors, 1)
}

// Report returns the warn/error counts per component, sorted by component name.
func Report() []ComponentReport {
	var out []ComponentReport
	components.Range(func(k, v any) bool {
		cs := v.(*componentStat)
		out = append(out, ComponentReport{
			Component: k.(string),
			Warns:     atomic.LoadInt64(&cs.warns),
			Errors:    atomic.LoadInt64(&cs.errors),
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Component < out[j].Component })
	return out
}

// ResetReport clears all counters.
func ResetReport() {
	components.Range(func(k, _ any) bool {
		components.Delete(k)
		return true
	})
}

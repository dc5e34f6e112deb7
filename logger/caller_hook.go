package logger

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// packagePath is the import path of this package, resolved at run time so the
// hook keeps working when the module is renamed.
var packagePath = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	slash := strings.LastIndex(name, "/")
	return name[:slash+1+strings.Index(name[slash+1:], ".")]
}()

// callerHook rewrites entry.Caller to the code that logged. logrus would
// report the Entry wrappers in this package instead.
type callerHook struct {
	prefixes []string
}

func newCallerHook() *callerHook {
	return &callerHook{prefixes: []string{"github.com/sirupsen/logrus.", packagePath + "."}}
}

func (h *callerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *callerHook) internal(f runtime.Frame) bool {
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	for _, p := range h.prefixes {
		if strings.HasPrefix(f.Function, p) {
			return true
		}
	}
	return false
}

func (h *callerHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !h.internal(frame) {
			entry.Caller = &frame
			return nil
		}
		if !more {
			return nil
		}
	}
}

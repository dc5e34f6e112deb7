package metrics

import (
	"sync"
	"time"

	"watchlist/logger"
)

// Metric is one emitted measurement.
type Metric struct {
	Timestamp time.Time
	Component string
	Name      string
	Value     interface{}
	Type      string
	Fields    logger.Fields
}

// Handler receives every emitted metric, synchronously on the emitting goroutine.
type Handler func(Metric)

var (
	handlersMu sync.RWMutex
	handlers   = map[uint64]Handler{}
	nextID     uint64
)

// Subscribe registers h and returns the function that removes it.
func Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}
	handlersMu.Lock()
	nextID++
	id := nextID
	handlers[id] = h
	handlersMu.Unlock()

	return func() {
		handlersMu.Lock()
		delete(handlers, id)
		handlersMu.Unlock()
	}
}

// record logs a metric and hands it to subscribers. Metrics without a name
// are dropped.
func record(log *logger.Log, component, name string, value interface{}, metricType string, fields logger.Fields) (Metric, bool) {
	if name == "" {
		return Metric{}, false
	}
	if metricType == "" {
		metricType = "counter"
	}
	if log == nil {
		log = logger.GetLogger()
	}

	m := Metric{
		Timestamp: time.Now(),
		Component: component,
		Name:      name,
		Value:     value,
		Type:      metricType,
		Fields:    make(logger.Fields, len(fields)),
	}
	logFields := make(logger.Fields, len(fields)+3)
	for k, v := range fields {
		m.Fields[k] = v
		logFields[k] = v
	}
	logFields["metric"] = name
	logFields["metric_type"] = metricType
	logFields["value"] = value
	log.WithComponent(component).WithFields(logFields).Debug("metric")

	handlersMu.RLock()
	subs := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		subs = append(subs, h)
	}
	handlersMu.RUnlock()

	for _, h := range subs {
		h(m)
	}
	return m, true
}

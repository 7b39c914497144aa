package telemetry

import (
	"fmt"
	"sync"
)

// API is an abstraction over logging/metrics so that components can be asserted
// against in tests.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that broke in a way that should be addressed.
	//
	// The `id` names the component that broke, not the specific line that broke.
	// ex. a failed HTTP request while listing sleeper players is `client.get-players`,
	// the fact that it was HTTP goes into a param or a wrapped error.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not necessarily broken but may be worth
	// investigating (ex. an ambiguous player match).
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is ignored unless verbose logging is on.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the count of an event at the current time, counts are points of
	// data and should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI attaches a namespace to every id reported through it, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI creates a ScopedAPI out of a given namespace and another api.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}

// Report is a single call recorded by RecorderAPI.
type Report struct {
	Kind   string
	Id     string
	Params []any
	Count  int64
}

// RecorderAPI keeps every report in memory, it is meant for tests.
type RecorderAPI struct {
	mutex   sync.Mutex
	Reports []Report
}

func (r *RecorderAPI) record(rep Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Reports = append(r.Reports, rep)
}

func (r *RecorderAPI) ReportBroken(id string, params ...any) {
	r.record(Report{Kind: "broken", Id: id, Params: params})
}

func (r *RecorderAPI) ReportWarning(id string, params ...any) {
	r.record(Report{Kind: "warning", Id: id, Params: params})
}

func (r *RecorderAPI) ReportDebug(msg string, params ...any) {
	r.record(Report{Kind: "debug", Id: msg, Params: params})
}

func (r *RecorderAPI) ReportCount(id string, count int64) {
	r.record(Report{Kind: "count", Id: id, Count: count})
}

// Find returns the reports of the given kind, in the order they were made.
func (r *RecorderAPI) Find(kind string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var out []Report
	for _, rep := range r.Reports {
		if rep.Kind == kind {
			out = append(out, rep)
		}
	}
	return out
}

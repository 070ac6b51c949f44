package telemetry

import "sync"

// Report is a single call made to a MemoryAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// MemoryAPI records every report in memory so tests can assert on what
// a component reported.
type MemoryAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func (m *MemoryAPI) record(kind, id string, params []any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reports = append(m.reports, Report{Kind: kind, ID: id, Params: params})
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.record("broken", id, params)
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.record("warning", id, params)
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.record("debug", msg, params)
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.record("count", id, []any{count})
}

// Reports returns a copy of the reports of the given kind ("broken", "warning",
// "debug" or "count"), an empty kind returns all of them.
func (m *MemoryAPI) Reports(kind string) []Report {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var out []Report
	for _, r := range m.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	mem := &MemoryAPI{}
	scoped := NewScopedAPI("jecna", NewScopedAPI("client", mem))

	scoped.ReportBroken("login", "bad token")
	scoped.ReportWarning("query")
	scoped.ReportDebug("fetch grades", 2021)
	scoped.ReportCount("subjects", 12)

	broken := mem.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "client: jecna: login", broken[0].ID)
	require.Equal(t, []any{"bad token"}, broken[0].Params)

	require.Equal(t, "client: jecna: query", mem.Reports("warning")[0].ID)
	require.Equal(t, "client: jecna: fetch grades", mem.Reports("debug")[0].ID)
	require.Equal(t, []any{int64(12)}, mem.Reports("count")[0].Params)
	require.Len(t, mem.Reports(""), 4)
}

package table_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/mesh/table"
)

func TestRoutingTable(t *testing.T) {
	rt := table.NewRoutingTable()
	require.False(t, rt.Lookup(addrC).IsSet())

	require.True(t, rt.Upsert(addrC, addrB))
	require.Equal(t, addrB, rt.Lookup(addrC).Unwrap())
	require.Equal(t, 1, rt.Size())

	// identical route is a no-op
	require.False(t, rt.Upsert(addrC, addrB))

	// a different next hop replaces the entry
	require.True(t, rt.Upsert(addrC, addrA))
	require.Equal(t, addrA, rt.Lookup(addrC).Unwrap())
	require.Equal(t, 1, rt.Size())

	require.True(t, rt.Upsert(addrB, addrB))
	require.Len(t, rt.GetAll(), 2)

	require.True(t, rt.Remove(addrC))
	require.False(t, rt.Remove(addrC))
	require.False(t, rt.Lookup(addrC).IsSet())
	require.Equal(t, []table.Route{{Destination: addrB, NextHop: addrB}}, rt.GetAll())
}

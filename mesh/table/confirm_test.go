package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/mesh/table"
)

func TestConfirmResolve(t *testing.T) {
	ct := table.NewConfirmTracker()
	now := time.Unix(100, 0)
	ct.Add(table.ConfirmWait{Target: addrB, ID: 1, SentAt: now})
	ct.Add(table.ConfirmWait{Target: addrC, ID: 1, SentAt: now})
	require.Equal(t, 2, ct.Len())

	require.False(t, ct.Resolve(addrA, 1))
	require.False(t, ct.Resolve(addrB, 2))
	require.True(t, ct.Resolve(addrC, 1))
	require.False(t, ct.Resolve(addrC, 1))
	require.Equal(t, 1, ct.Len())

	ct.Clear()
	require.Equal(t, 0, ct.Len())
	require.False(t, ct.Resolve(addrB, 1))
}

func TestConfirmExpire(t *testing.T) {
	ct := table.NewConfirmTracker()
	start := time.Unix(100, 0)
	ct.Add(table.ConfirmWait{Target: addrB, ID: 1, SentAt: start})
	ct.Add(table.ConfirmWait{Target: addrC, ID: 2, SentAt: start.Add(300 * time.Millisecond)})
	ct.Add(table.ConfirmWait{Target: addrB, ID: 3, SentAt: start.Add(100 * time.Millisecond)})

	require.Empty(t, ct.Expire(start.Add(500*time.Millisecond), 500*time.Millisecond))

	expired := ct.Expire(start.Add(650*time.Millisecond), 500*time.Millisecond)
	require.Equal(t, []table.ConfirmWait{
		{Target: addrB, ID: 1, SentAt: start},
		{Target: addrB, ID: 3, SentAt: start.Add(100 * time.Millisecond)},
	}, expired)
	require.Equal(t, 1, ct.Len())
	require.True(t, ct.Resolve(addrC, 2))
}

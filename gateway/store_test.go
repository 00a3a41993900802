package gateway_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/gateway"
	"github.com/zhmesh/zhmesh/mesh/frame"
	tu "github.com/zhmesh/zhmesh/std/utils/testutils"
)

var (
	sensorA = frame.MustParseAddress("02:00:00:00:00:0A")
	sensorB = frame.MustParseAddress("02:00:00:00:00:0B")
)

func record(sender frame.Address, sec int64, payload string) gateway.Record {
	return gateway.Record{Sender: sender, Received: time.Unix(sec, 0), Payload: []byte(payload)}
}

func testStoreBasic(t *testing.T, store gateway.Store) {
	require.Empty(t, tu.NoErr(store.List(0)))

	require.NoError(t, store.Put(record(sensorA, 1, "one")))
	require.NoError(t, store.Put(record(sensorB, 2, "two")))
	require.NoError(t, store.Put(record(sensorA, 3, "three")))

	all := tu.NoErr(store.List(0))
	require.Len(t, all, 3)
	for i, want := range []gateway.Record{
		record(sensorA, 1, "one"),
		record(sensorB, 2, "two"),
		record(sensorA, 3, "three"),
	} {
		require.Equal(t, want.Sender, all[i].Sender)
		require.True(t, want.Received.Equal(all[i].Received))
		require.Equal(t, want.Payload, all[i].Payload)
	}

	last := tu.NoErr(store.List(2))
	require.Len(t, last, 2)
	require.Equal(t, []byte("two"), last[0].Payload)
	require.Equal(t, []byte("three"), last[1].Payload)

	require.NoError(t, store.Put(gateway.Record{Sender: sensorB, Received: time.Unix(4, 0)}))
	require.Empty(t, tu.NoErr(store.List(1))[0].Payload)
}

func TestMemoryStore(t *testing.T) {
	tu.SetT(t)
	store := gateway.NewMemoryStore(10)
	testStoreBasic(t, store)
	require.NoError(t, store.Close())

	bounded := gateway.NewMemoryStore(2)
	for i := range 5 {
		require.NoError(t, bounded.Put(record(sensorA, int64(i), "x")))
	}
	recs := tu.NoErr(bounded.List(0))
	require.Len(t, recs, 2)
	require.Equal(t, int64(3), recs[0].Received.Unix())
}

func TestBadgerStore(t *testing.T) {
	tu.SetT(t)
	dir := filepath.Join(t.TempDir(), "badger")

	store := tu.NoErr(gateway.NewBadgerStore(dir))
	testStoreBasic(t, store)
	require.NoError(t, store.Close())

	// the sequence continues after a reopen
	store = tu.NoErr(gateway.NewBadgerStore(dir))
	require.NoError(t, store.Put(record(sensorB, 5, "five")))
	recs := tu.NoErr(store.List(0))
	require.Len(t, recs, 5)
	require.Equal(t, []byte("five"), recs[4].Payload)
	require.NoError(t, store.Close())
}

func TestSqliteStore(t *testing.T) {
	tu.SetT(t)
	path := filepath.Join(t.TempDir(), "records.db")

	store := tu.NoErr(gateway.NewSqliteStore(path))
	testStoreBasic(t, store)
	require.NoError(t, store.Close())

	store = tu.NoErr(gateway.NewSqliteStore(path))
	require.Len(t, tu.NoErr(store.List(0)), 4)
	require.NoError(t, store.Close())
}

func TestOpenStore(t *testing.T) {
	tu.SetT(t)
	base := t.TempDir()

	cfg := gateway.DefaultConfig()
	require.NoError(t, cfg.Parse())
	store := tu.NoErr(gateway.OpenStore(cfg, base))
	require.Equal(t, "memory-store", store.String())

	cfg.Store = "sqlite"
	require.Error(t, cfg.Parse())
	cfg.Path = "gw.db"
	require.NoError(t, cfg.Parse())
	store = tu.NoErr(gateway.OpenStore(cfg, base))
	require.Equal(t, "sqlite-store", store.String())
	require.NoError(t, store.Close())
	require.FileExists(t, filepath.Join(base, "gw.db"))

	cfg.Store = "floppy"
	require.Error(t, cfg.Parse())
	cfg.Store = "memory"
	cfg.Format = "json"
	require.Error(t, cfg.Parse())
}

package optional_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/std/types/optional"
)

func TestOptional(t *testing.T) {
	option := optional.Some[int](42)
	require.True(t, option.IsSet())
	val, ok := option.Get()
	require.Equal(t, 42, val)
	require.True(t, ok)
	require.Equal(t, 42, option.Unwrap())
	require.Equal(t, 42, option.GetOr(5))
	require.Equal(t, "Some(42)", option.String())

	option = optional.None[int]()
	require.False(t, option.IsSet())
	val, ok = option.Get()
	require.Equal(t, 0, val)
	require.False(t, ok)
	require.Panics(t, func() { option.Unwrap() })
	require.Equal(t, 5, option.GetOr(5))
	require.Equal(t, "None", option.String())

	option.Set(45)
	require.Equal(t, 45, option.Unwrap())
	option.Unset()
	require.False(t, option.IsSet())
}

func TestCastInt(t *testing.T) {
	wide := optional.CastInt[uint8, uint64](optional.Some[uint8](7))
	require.Equal(t, uint64(7), wide.Unwrap())

	none := optional.CastInt[uint8, uint64](optional.None[uint8]())
	require.False(t, none.IsSet())
}

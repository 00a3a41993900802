// Package utils holds helpers shared by tests.
package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT binds the helpers below to the running test.
func SetT(t *testing.T) {
	testT = t
}

// NoErr unwraps a (value, error) pair, failing the test on error.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err asserts that a (value, error) pair carries an error and returns it.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}

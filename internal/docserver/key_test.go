package docserver

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

func TestDeriveKeyRoundTrip(t *testing.T) {
	key := DeriveKey(42, 1700000000123)
	require.Equal(t, "42_1700000000123", key)

	id, mtime, err := ParseKey(key)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
	require.EqualValues(t, 1700000000123, mtime)
}

func TestDeriveKeyMillisecondPrecision(t *testing.T) {
	// Two saves inside the same second still rotate the key.
	a := DeriveKey(7, 1700000000001)
	b := DeriveKey(7, 1700000000002)
	require.NotEqual(t, a, b)
	require.Equal(t, DeriveKey(7, 1700000000001), a)
}

func TestParseKeyMalformed(t *testing.T) {
	for _, key := range []string{
		"",
		"42",
		"_",
		"abc_123",
		"42_abc",
		"0_1700000000123",
		"-3_1700000000123",
		"42_-5",
	} {
		_, _, err := ParseKey(key)
		require.ErrorIs(t, err, appErr.ErrUnknownKey, "key %q", key)
	}
}

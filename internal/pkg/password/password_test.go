package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndMatch(t *testing.T) {
	Cost = bcrypt.MinCost
	hash, err := Hash("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)
	require.True(t, Matches(hash, "hunter2"))
	require.False(t, Matches(hash, "hunter3"))
	require.False(t, Matches("", "hunter2"))
}

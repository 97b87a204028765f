package github

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewClient_RepositoryShape rejects malformed repository identifiers.
func TestNewClient_RepositoryShape(t *testing.T) {
	t.Parallel()

	for _, repo := range []string{"", "noslash", "/name", "owner/"} {
		_, err := NewClient(repo)
		require.Error(t, err, repo)
	}

	client, err := NewClient("trueasync/php-trueasync")
	require.NoError(t, err)
	require.Equal(t, "trueasync", client.owner)
	require.Equal(t, "php-trueasync", client.repo)
}

package auth_test

import (
	"testing"

	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) *auth.Guard {
	t.Helper()
	s, err := storage.NewFileStore(t.TempDir(), "mainAdmin")
	require.NoError(t, err)
	return auth.NewGuard(s, audit.Nop{}, "mainAdmin")
}

func TestGuard_IsAdmin(t *testing.T) {
	g := newGuard(t)

	assert.True(t, g.IsAdmin("mainAdmin"))
	assert.False(t, g.IsAdmin("alice"))
	assert.False(t, g.IsAdmin(""))
}

// TestGuard_AddRemoveScenario follows the canonical flow: alice is granted,
// grants bob, and the main admin survives a removal attempt.
func TestGuard_AddRemoveScenario(t *testing.T) {
	g := newGuard(t)

	require.NoError(t, g.Add("mainAdmin", "alice"))
	require.NoError(t, g.Add("alice", "bob"))

	admins, err := g.Admins()
	require.NoError(t, err)
	assert.Equal(t, []string{"mainAdmin", "alice", "bob"}, admins)

	// Protected identity: removal is a silent no-op.
	require.NoError(t, g.Remove("alice", "mainAdmin"))
	assert.True(t, g.IsAdmin("mainAdmin"))

	require.NoError(t, g.Remove("alice", "bob"))
	assert.False(t, g.IsAdmin("bob"))
}

func TestGuard_NonAdminCannotMutate(t *testing.T) {
	g := newGuard(t)

	assert.ErrorIs(t, g.Add("mallory", "mallory"), auth.ErrNotAdmin)
	assert.ErrorIs(t, g.Remove("mallory", "mainAdmin"), auth.ErrNotAdmin)
	assert.False(t, g.IsAdmin("mallory"))
}

func TestGuard_AddIsIdempotent(t *testing.T) {
	g := newGuard(t)

	require.NoError(t, g.Add("mainAdmin", "alice"))
	require.NoError(t, g.Add("mainAdmin", "alice"))

	admins, err := g.Admins()
	require.NoError(t, err)
	assert.Equal(t, []string{"mainAdmin", "alice"}, admins)
}

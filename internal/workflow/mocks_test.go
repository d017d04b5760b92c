package workflow_test

import (
	"errors"
	"testing"

	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errWriteFailed = errors.New("write failed")

// brokenStore delegates reads but fails every player-map write.
type brokenStore struct {
	storage.Store
}

func (brokenStore) SetPlayer(string, int64) error {
	return errWriteFailed
}

// MockRcon is a testify mock of the rcon.Client interface.
type MockRcon struct {
	mock.Mock
}

func (m *MockRcon) Send(cmd string) string {
	args := m.Called(cmd)
	return args.String(0)
}

func (m *MockRcon) AddToWhitelist(nick, license string) string {
	args := m.Called(nick, license)
	return args.String(0)
}

func (m *MockRcon) RemoveFromWhitelist(nick string) (string, string) {
	args := m.Called(nick)
	return args.String(0), args.String(1)
}

func (m *MockRcon) Whitelist() string {
	args := m.Called()
	return args.String(0)
}

// newFixture assembles a file store, a guard with "admin" privileged, and a
// mock RCON client.
func newFixture(t *testing.T) (storage.Store, *auth.Guard, *MockRcon) {
	t.Helper()
	s, err := storage.NewFileStore(t.TempDir(), "admin")
	require.NoError(t, err)
	g := auth.NewGuard(s, audit.Nop{}, "admin")
	return s, g, new(MockRcon)
}

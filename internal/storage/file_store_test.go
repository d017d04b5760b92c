package storage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"wlbot/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*storage.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewFileStore(dir, "Errnick")
	require.NoError(t, err)
	return s, dir
}

// TestFileStore_SeedsMainAdmin verifies that a fresh data dir starts with
// the main admin already persisted.
func TestFileStore_SeedsMainAdmin(t *testing.T) {
	s, _ := newTestStore(t)

	admins, err := s.Admins()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Errnick"}, admins)
}

func TestFileStore_PlayersRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	players, err := s.Players()
	assert.NoError(t, err)
	assert.Empty(t, players)

	assert.NoError(t, s.SetPlayer("Steve", 111))
	assert.NoError(t, s.SetPlayer("Alex", 222))

	players, err = s.Players()
	assert.NoError(t, err)
	assert.Equal(t, int64(111), players["Steve"])
	assert.Equal(t, int64(222), players["Alex"])

	assert.NoError(t, s.RemovePlayer("Steve"))
	players, err = s.Players()
	assert.NoError(t, err)
	assert.NotContains(t, players, "Steve")
	assert.Contains(t, players, "Alex")
}

// TestFileStore_RemoveAbsentPlayer documents that removing an unknown nick
// is a silent no-op, not an error.
func TestFileStore_RemoveAbsentPlayer(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.RemovePlayer("ghost"))
}

// TestFileStore_FileFormat pins the on-disk format: pretty-printed JSON, an
// object for players and an array for admins.
func TestFileStore_FileFormat(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.SetPlayer("Steve", 111))
	require.NoError(t, s.SaveAdmins([]string{"Errnick", "alice"}))

	playersRaw, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	assert.Contains(t, string(playersRaw), "\n  \"Steve\": 111")

	var players map[string]int64
	require.NoError(t, json.Unmarshal(playersRaw, &players))
	assert.Equal(t, map[string]int64{"Steve": 111}, players)

	adminsRaw, err := os.ReadFile(filepath.Join(dir, "admins.json"))
	require.NoError(t, err)
	var admins []string
	require.NoError(t, json.Unmarshal(adminsRaw, &admins))
	assert.Equal(t, []string{"Errnick", "alice"}, admins)
}

// TestFileStore_WholesaleRewriteLosesConcurrentUpdate documents the file
// backend's read-modify-write window: every mutation rewrites users.json
// from a full snapshot, so a writer holding a stale snapshot erases any
// binding written in between. The test replays the two halves of such a
// writer around a competing SetPlayer. The Redis backend mutates a single
// hash field per call and does not have this window.
func TestFileStore_WholesaleRewriteLosesConcurrentUpdate(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.SetPlayer("Steve", 111))
	usersPath := filepath.Join(dir, "users.json")

	// First half of the stale writer's SetPlayer("Carol", 333): read the map.
	raw, err := os.ReadFile(usersPath)
	require.NoError(t, err)
	stale := map[string]int64{}
	require.NoError(t, json.Unmarshal(raw, &stale))

	// A competing write lands in between.
	require.NoError(t, s.SetPlayer("Alex", 222))

	// Second half: the stale writer adds its key and rewrites the whole file.
	stale["Carol"] = 333
	out, err := json.MarshalIndent(stale, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(usersPath, out, 0o644))

	players, err := s.Players()
	require.NoError(t, err)
	assert.Equal(t, int64(111), players["Steve"])
	assert.Equal(t, int64(333), players["Carol"])
	assert.NotContains(t, players, "Alex", "the binding written inside the window is silently dropped")
}

// TestFileStore_NickIsCaseSensitive verifies that nicknames differing only
// in case are distinct keys.
func TestFileStore_NickIsCaseSensitive(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetPlayer("Steve", 111))
	require.NoError(t, s.SetPlayer("steve", 222))

	players, err := s.Players()
	require.NoError(t, err)
	assert.Equal(t, int64(111), players["Steve"])
	assert.Equal(t, int64(222), players["steve"])
}

func TestNickOf(t *testing.T) {
	players := map[string]int64{"Steve": 111, "Alex": 222}

	nick, ok := storage.NickOf(players, 222)
	assert.True(t, ok)
	assert.Equal(t, "Alex", nick)

	_, ok = storage.NickOf(players, 999)
	assert.False(t, ok)
}

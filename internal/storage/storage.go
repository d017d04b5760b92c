// Package storage persists the two durable data sets of the bot: the player
// map (in-game nickname -> Telegram user id) and the admin set. Both are
// read back in full on every operation; nothing is cached in-process.
package storage

// Store is the persistence interface the bot works against. The default
// backend keeps pretty-printed JSON files on disk; a Redis backend is
// available for deployments that need field-level mutation.
type Store interface {
	// Players returns the full nickname -> Telegram id map.
	Players() (map[string]int64, error)
	// SetPlayer binds a nickname to a Telegram user id.
	SetPlayer(nick string, telegramID int64) error
	// RemovePlayer drops a nickname binding. Removing an absent nickname
	// is not an error.
	RemovePlayer(nick string) error

	// Admins returns the admin usernames in their persisted order.
	Admins() ([]string, error)
	// SaveAdmins rewrites the complete admin set.
	SaveAdmins(admins []string) error
}

// NickOf does a reverse lookup of a Telegram id in a player map. The second
// result is false when the id has no bound nickname.
func NickOf(players map[string]int64, telegramID int64) (string, bool) {
	for nick, id := range players {
		if id == telegramID {
			return nick, true
		}
	}
	return "", false
}

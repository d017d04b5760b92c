package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	playersFile = "users.json"
	adminsFile  = "admins.json"
)

// FileStore keeps the player map and the admin set as pretty-printed JSON
// files under a data directory: users.json is an object from nickname to
// Telegram id, admins.json is an array of usernames.
//
// Every mutation rewrites the whole file. Two concurrent read-modify-write
// sequences can therefore lose one update; deployments that care should use
// the Redis backend instead.
type FileStore struct {
	dir string
}

// NewFileStore prepares a store under dir, creating the directory and empty
// data files on first run. The main admin is seeded into admins.json the way
// the bot has always done it.
func NewFileStore(dir, mainAdmin string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	s := &FileStore{dir: dir}

	if _, err := os.Stat(s.path(playersFile)); os.IsNotExist(err) {
		if err := s.writeJSON(playersFile, map[string]int64{}); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(s.path(adminsFile)); os.IsNotExist(err) {
		if err := s.writeJSON(adminsFile, []string{mainAdmin}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Players() (map[string]int64, error) {
	data, err := os.ReadFile(s.path(playersFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", playersFile, err)
	}
	players := make(map[string]int64)
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", playersFile, err)
	}
	return players, nil
}

func (s *FileStore) SetPlayer(nick string, telegramID int64) error {
	players, err := s.Players()
	if err != nil {
		return err
	}
	players[nick] = telegramID
	return s.writeJSON(playersFile, players)
}

func (s *FileStore) RemovePlayer(nick string) error {
	players, err := s.Players()
	if err != nil {
		return err
	}
	delete(players, nick)
	return s.writeJSON(playersFile, players)
}

func (s *FileStore) Admins() ([]string, error) {
	data, err := os.ReadFile(s.path(adminsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", adminsFile, err)
	}
	var admins []string
	if err := json.Unmarshal(data, &admins); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", adminsFile, err)
	}
	return admins, nil
}

func (s *FileStore) SaveAdmins(admins []string) error {
	return s.writeJSON(adminsFile, admins)
}

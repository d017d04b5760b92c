// Package auth resolves admin privilege against the persisted admin set and
// owns its mutation. The set is re-read from the store on every check;
// nothing is cached.
package auth

import (
	"errors"
	"log"

	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/storage"
)

// ErrNotAdmin is returned when a mutation is requested by a non-admin.
var ErrNotAdmin = errors.New("requester is not an admin")

// Guard answers membership questions about the admin set and applies
// audited mutations to it. MainAdmin can never be removed.
type Guard struct {
	Store     storage.Store
	Audit     audit.Recorder
	MainAdmin string
}

// NewGuard builds a Guard over the given store.
func NewGuard(s storage.Store, rec audit.Recorder, mainAdmin string) *Guard {
	return &Guard{Store: s, Audit: rec, MainAdmin: mainAdmin}
}

// IsAdmin reports whether username is in the current admin set.
func (g *Guard) IsAdmin(username string) bool {
	if username == "" {
		return false
	}
	admins, err := g.Store.Admins()
	if err != nil {
		log.Printf("ERROR: Failed to load admin set: %v", err)
		return false
	}
	for _, a := range admins {
		if a == username {
			return true
		}
	}
	return false
}

// Admins returns the current admin set in persisted order.
func (g *Guard) Admins() ([]string, error) {
	return g.Store.Admins()
}

// Add grants admin privilege to target. Adding an existing admin is a
// no-op; the set is persisted before returning.
func (g *Guard) Add(requester, target string) error {
	if !g.IsAdmin(requester) {
		return ErrNotAdmin
	}
	admins, err := g.Store.Admins()
	if err != nil {
		return err
	}
	for _, a := range admins {
		if a == target {
			return nil
		}
	}
	admins = append(admins, target)
	if err := g.Store.SaveAdmins(admins); err != nil {
		return err
	}
	g.Audit.Record(requester, "admin_add", target, "")
	return nil
}

// Remove revokes admin privilege from target. Removing the main admin is a
// silent no-op.
func (g *Guard) Remove(requester, target string) error {
	if !g.IsAdmin(requester) {
		return ErrNotAdmin
	}
	if target == g.MainAdmin {
		return nil
	}
	admins, err := g.Store.Admins()
	if err != nil {
		return err
	}
	kept := admins[:0]
	for _, a := range admins {
		if a != target {
			kept = append(kept, a)
		}
	}
	if err := g.Store.SaveAdmins(kept); err != nil {
		return err
	}
	g.Audit.Record(requester, "admin_remove", target, "")
	return nil
}

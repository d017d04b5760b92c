// Package workflow runs the two stateful approval flows of the bot:
// whitelist applications and player reports. Both keep their transient
// entities in maps guarded by a mutex; an entity is taken out of its map
// under the lock before any external call, so a concurrent duplicate action
// observes "not found" instead of double-executing.
package workflow

import "errors"

var (
	// ErrMalformedSubmission is returned when a submission body does not
	// decompose into the required number of non-empty lines.
	ErrMalformedSubmission = errors.New("malformed submission")
	// ErrInvalidNickname is returned for nicknames outside [A-Za-z0-9_]{3,16}.
	ErrInvalidNickname = errors.New("invalid nickname")
	// ErrNicknameTaken is returned when the nickname is already bound in
	// the player map.
	ErrNicknameTaken = errors.New("nickname already taken")
	// ErrNotRegistered is returned when a reporter has no player-map entry.
	ErrNotRegistered = errors.New("reporter is not registered")
	// ErrNotFound is returned for actions against an absent entity id:
	// already processed, race lost, or dropped by a restart.
	ErrNotFound = errors.New("entity not found")
	// ErrNotAllowed is returned when a report action comes from someone
	// other than the original reporter.
	ErrNotAllowed = errors.New("caller is not the reporter")
	// ErrBadTransition is returned for a report action that is not legal
	// in the report's current state.
	ErrBadTransition = errors.New("illegal state transition")
)

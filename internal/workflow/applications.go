package workflow

import (
	"fmt"
	"regexp"
	"sync"

	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/config"
	"wlbot/backend/internal/models"
	"wlbot/backend/internal/rcon"
	"wlbot/backend/internal/storage"
)

// NickPattern validates in-game nicknames.
var NickPattern = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9_]{%d,%d}$`, config.NickMinLen, config.NickMaxLen))

// Applications handles whitelist applications from submission to decision.
// Pending applications live in memory only and do not survive a restart.
type Applications struct {
	mu      sync.Mutex
	pending map[int]*models.Application

	Store storage.Store
	Rcon  rcon.Client
	Guard *auth.Guard
	Audit audit.Recorder

	// TrustApplication keeps the player-map write on approve even when the
	// whitelist add returned no response.
	TrustApplication bool
}

// NewApplications builds the application workflow service.
func NewApplications(s storage.Store, rc rcon.Client, g *auth.Guard, rec audit.Recorder, trust bool) *Applications {
	return &Applications{
		pending:          make(map[int]*models.Application),
		Store:            s,
		Rcon:             rc,
		Guard:            g,
		Audit:            rec,
		TrustApplication: trust,
	}
}

// Submit validates a six-line application body and registers the pending
// application under the submission message id. The six lines are: nick,
// license, age, source, activity, reason.
func (a *Applications) Submit(submitterID int64, messageID int, lines []string) (*models.Application, error) {
	if len(lines) != config.ApplicationLines {
		return nil, ErrMalformedSubmission
	}
	nick := lines[0]
	if !NickPattern.MatchString(nick) {
		return nil, ErrInvalidNickname
	}

	players, err := a.Store.Players()
	if err != nil {
		return nil, err
	}
	if _, taken := players[nick]; taken {
		return nil, ErrNicknameTaken
	}

	app := &models.Application{
		MessageID:   messageID,
		Nick:        nick,
		License:     lines[1],
		Age:         lines[2],
		Source:      lines[3],
		Activity:    lines[4],
		Reason:      lines[5],
		SubmitterID: submitterID,
	}

	a.mu.Lock()
	a.pending[messageID] = app
	a.mu.Unlock()
	return app, nil
}

// SetCard records the message id of the rendered decision card so both
// messages can be deleted after the decision.
func (a *Applications) SetCard(messageID, cardMessageID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if app, ok := a.pending[messageID]; ok {
		app.CardMessageID = cardMessageID
	}
}

// Outcome is the result of a decision, handed back to the transport layer
// for rendering and message cleanup.
type Outcome struct {
	App      *models.Application
	Approved bool
	// RconResponse is the raw whitelist-add response; empty on failure.
	RconResponse string
	// MapUpdated reports whether the player map was written.
	MapUpdated bool
}

// Decide resolves a pending application. The application is taken out of the
// pending map under the lock first, so of two concurrent decisions exactly
// one proceeds and the other gets ErrNotFound. The entity is consumed on
// both branches regardless of downstream success.
func (a *Applications) Decide(adminUsername string, messageID int, approve bool) (*Outcome, error) {
	if !a.Guard.IsAdmin(adminUsername) {
		return nil, auth.ErrNotAdmin
	}

	a.mu.Lock()
	app, ok := a.pending[messageID]
	if ok {
		delete(a.pending, messageID)
	}
	a.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	out := &Outcome{App: app, Approved: approve}
	if !approve {
		a.Audit.Record(adminUsername, "application_deny", app.Nick, "")
		return out, nil
	}

	out.RconResponse = a.Rcon.AddToWhitelist(app.Nick, app.License)
	if out.RconResponse == "" && !a.TrustApplication {
		a.Audit.Record(adminUsername, "application_approve_failed", app.Nick, "no RCON response")
		return out, nil
	}
	if err := a.Store.SetPlayer(app.Nick, app.SubmitterID); err != nil {
		return out, err
	}
	out.MapUpdated = true
	a.Audit.Record(adminUsername, "application_approve", app.Nick, out.RconResponse)
	return out, nil
}

// Pending returns a snapshot of the pending applications.
func (a *Applications) Pending() []models.Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	apps := make([]models.Application, 0, len(a.pending))
	for _, app := range a.pending {
		apps = append(apps, *app)
	}
	return apps
}

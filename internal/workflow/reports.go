package workflow

import (
	"sync"

	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/config"
	"wlbot/backend/internal/models"
	"wlbot/backend/internal/storage"
)

// Reports runs the three-state report lifecycle:
//
//	NEW -> REVIEWED   (admin only)
//	REVIEWED -> CLOSED (reporter only, terminal)
//	REVIEWED -> NEW    (reporter only, reopen)
//
// Reports live in memory only, keyed by the submission message id.
type Reports struct {
	mu    sync.Mutex
	items map[int]*models.Report

	Store storage.Store
	Guard *auth.Guard
}

// NewReports builds the report workflow service.
func NewReports(s storage.Store, g *auth.Guard) *Reports {
	return &Reports{
		items: make(map[int]*models.Report),
		Store: s,
		Guard: g,
	}
}

// Submit validates a two-line report body (target nick, reason) and creates
// the report in state NEW. The reporter must already be bound in the player
// map; the target nickname is kept raw and resolved at render time.
func (r *Reports) Submit(reporterID int64, messageID int, lines []string) (*models.Report, error) {
	if len(lines) != config.ReportLines {
		return nil, ErrMalformedSubmission
	}

	players, err := r.Store.Players()
	if err != nil {
		return nil, err
	}
	if _, ok := storage.NickOf(players, reporterID); !ok {
		return nil, ErrNotRegistered
	}

	rep := &models.Report{
		MessageID:     messageID,
		ReporterID:    reporterID,
		TargetNickRaw: lines[0],
		Reason:        lines[1],
		Status:        models.ReportNew,
	}

	r.mu.Lock()
	r.items[messageID] = rep
	r.mu.Unlock()
	return rep, nil
}

// SetCard records the id of the rendered report card message.
func (r *Reports) SetCard(reportID, cardMessageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.items[reportID]; ok {
		rep.CardMessageID = cardMessageID
	}
}

// Review moves a NEW report to REVIEWED. Admin only.
func (r *Reports) Review(adminUsername string, reportID int) (*models.Report, error) {
	if !r.Guard.IsAdmin(adminUsername) {
		return nil, auth.ErrNotAdmin
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	if rep.Status != models.ReportNew {
		return nil, ErrBadTransition
	}
	rep.Status = models.ReportReviewed
	snapshot := *rep
	return &snapshot, nil
}

// Close terminates a REVIEWED report. Only the original reporter may close;
// the entity is removed so any later action observes ErrNotFound.
func (r *Reports) Close(callerID int64, reportID int) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	if rep.ReporterID != callerID {
		return nil, ErrNotAllowed
	}
	if rep.Status != models.ReportReviewed {
		return nil, ErrBadTransition
	}
	rep.Status = models.ReportClosed
	delete(r.items, reportID)
	snapshot := *rep
	return &snapshot, nil
}

// Reopen moves a REVIEWED report back to NEW. Only the original reporter.
func (r *Reports) Reopen(callerID int64, reportID int) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	if rep.ReporterID != callerID {
		return nil, ErrNotAllowed
	}
	if rep.Status != models.ReportReviewed {
		return nil, ErrBadTransition
	}
	rep.Status = models.ReportNew
	snapshot := *rep
	return &snapshot, nil
}

// Get returns a snapshot of one report.
func (r *Reports) Get(reportID int) (*models.Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[reportID]
	if !ok {
		return nil, false
	}
	snapshot := *rep
	return &snapshot, true
}

// Open returns a snapshot of all live reports.
func (r *Reports) Open() []models.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	reps := make([]models.Report, 0, len(r.items))
	for _, rep := range r.items {
		reps = append(reps, *rep)
	}
	return reps
}

package workflow_test

import (
	"testing"

	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/models"
	"wlbot/backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reporterID int64 = 500

func newReports(t *testing.T) *workflow.Reports {
	t.Helper()
	s, g, _ := newFixture(t)
	require.NoError(t, s.SetPlayer("Reporter", reporterID))
	return workflow.NewReports(s, g)
}

func submitReport(t *testing.T, r *workflow.Reports) *models.Report {
	t.Helper()
	rep, err := r.Submit(reporterID, 10, []string{"Griefer99", "разрушил дом"})
	require.NoError(t, err)
	return rep
}

func TestReports_SubmitRequiresTwoLines(t *testing.T) {
	r := newReports(t)

	_, err := r.Submit(reporterID, 10, []string{"Griefer99"})
	assert.ErrorIs(t, err, workflow.ErrMalformedSubmission)

	_, err = r.Submit(reporterID, 10, []string{"Griefer99", "причина", "лишняя строка"})
	assert.ErrorIs(t, err, workflow.ErrMalformedSubmission)
}

func TestReports_SubmitRequiresRegisteredReporter(t *testing.T) {
	r := newReports(t)

	_, err := r.Submit(777, 10, []string{"Griefer99", "причина"})
	assert.ErrorIs(t, err, workflow.ErrNotRegistered)
}

func TestReports_SubmitStartsNew(t *testing.T) {
	r := newReports(t)
	rep := submitReport(t, r)

	assert.Equal(t, models.ReportNew, rep.Status)
	assert.Equal(t, "Griefer99", rep.TargetNickRaw)
	assert.Equal(t, reporterID, rep.ReporterID)
}

func TestReports_ReviewTransition(t *testing.T) {
	r := newReports(t)
	submitReport(t, r)

	// Non-admin cannot move a report out of NEW.
	_, err := r.Review("mallory", 10)
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
	rep, _ := r.Get(10)
	assert.Equal(t, models.ReportNew, rep.Status)

	rep, err = r.Review("admin", 10)
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, rep.Status)

	// Reviewing twice is an illegal transition.
	_, err = r.Review("admin", 10)
	assert.ErrorIs(t, err, workflow.ErrBadTransition)
}

func TestReports_CloseOnlyFromReviewed(t *testing.T) {
	r := newReports(t)
	submitReport(t, r)

	// NEW -> CLOSED is never legal, even for the reporter.
	_, err := r.Close(reporterID, 10)
	assert.ErrorIs(t, err, workflow.ErrBadTransition)

	_, err = r.Review("admin", 10)
	require.NoError(t, err)

	// Only the original reporter may close.
	_, err = r.Close(999, 10)
	assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	rep, ok := r.Get(10)
	require.True(t, ok)
	assert.Equal(t, models.ReportReviewed, rep.Status)

	rep, err = r.Close(reporterID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.ReportClosed, rep.Status)

	// Terminal: the entity is gone.
	_, ok = r.Get(10)
	assert.False(t, ok)
	_, err = r.Close(reporterID, 10)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestReports_ReopenCycle(t *testing.T) {
	r := newReports(t)
	submitReport(t, r)

	_, err := r.Review("admin", 10)
	require.NoError(t, err)

	// Only the reporter may reopen.
	_, err = r.Reopen(999, 10)
	assert.ErrorIs(t, err, workflow.ErrNotAllowed)

	rep, err := r.Reopen(reporterID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.ReportNew, rep.Status)

	// Reopening from NEW is illegal.
	_, err = r.Reopen(reporterID, 10)
	assert.ErrorIs(t, err, workflow.ErrBadTransition)

	// The cycle may repeat: NEW -> REVIEWED -> CLOSED.
	_, err = r.Review("admin", 10)
	require.NoError(t, err)
	_, err = r.Close(reporterID, 10)
	assert.NoError(t, err)
}

func TestReports_ActionsOnUnknownID(t *testing.T) {
	r := newReports(t)

	_, err := r.Review("admin", 404)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
	_, err = r.Close(reporterID, 404)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
	_, err = r.Reopen(reporterID, 404)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

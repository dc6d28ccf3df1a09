package meetings

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
	"salesagent-backend/internal/validation"
)

type noAnalysis struct{}

func (noAnalysis) Lookup(context.Context, string) (*models.RFPAnalysis, error) { return nil, nil }

type openQuestions []models.Question

func (q openQuestions) Pending(context.Context, string) ([]models.Question, error) { return q, nil }

type fakeAssistant struct {
	agendaIn   ai.AgendaInput
	insightsIn ai.InsightsInput
}

func (f *fakeAssistant) GenerateAgenda(_ context.Context, in ai.AgendaInput) (models.Meeting, ai.Outcome) {
	f.agendaIn = in
	return models.Meeting{Agenda: []models.AgendaItem{
		{Title: "Nächste Schritte", Order: 2},
		{Title: "Begrüßung", Order: 1},
	}}, ai.OutcomeFallback
}

func (f *fakeAssistant) ExtractInsights(_ context.Context, in ai.InsightsInput) (models.MeetingInsights, ai.Outcome) {
	f.insightsIn = in
	return models.MeetingInsights{
		Insights:    []string{"Kunde bevorzugt Azure"},
		ActionItems: []string{"Architektur ausarbeiten", " "},
	}, ai.OutcomeAI
}

func setup(t *testing.T) (*Service, *fakeAssistant, string) {
	t.Helper()
	ps := projects.NewService(projects.NewMemoryRepository(), time.UTC)
	p, err := ps.Create(context.Background(), projects.CreateRequest{Name: "Portal", Customer: "Stadtwerke"}, "")
	require.NoError(t, err)
	assistant := &fakeAssistant{}
	pending := openQuestions{{ID: "q1", Question: "Budget?", Status: models.QuestionPending}}
	return NewService(NewMemoryRepository(), ps, noAnalysis{}, pending, assistant, time.UTC), assistant, p.ID
}

func TestInsightsUseStoredNotes(t *testing.T) {
	svc, assistant, projectID := setup(t)
	ctx := context.Background()

	_, _, err := svc.ExtractInsights(ctx, projectID, "")
	assert.ErrorIs(t, err, ErrNoNotes)

	first, err := svc.PatchNotes(ctx, projectID, "  Azure bevorzugt, Budget bestätigt ")
	require.NoError(t, err)
	assert.Equal(t, "Azure bevorzugt, Budget bestätigt", first.Notes)

	m, outcome, err := svc.ExtractInsights(ctx, projectID, "")
	require.NoError(t, err)
	assert.Equal(t, ai.OutcomeAI, outcome)
	assert.Equal(t, "Azure bevorzugt, Budget bestätigt", assistant.insightsIn.Notes)
	assert.Equal(t, []string{"Kunde bevorzugt Azure"}, m.Insights)
	assert.Equal(t, []string{"Architektur ausarbeiten"}, m.ActionItems)
	assert.Equal(t, first.ID, m.ID)
}

func TestGenerateAgendaKeepsNotes(t *testing.T) {
	svc, assistant, projectID := setup(t)
	ctx := context.Background()
	_, err := svc.PatchNotes(ctx, projectID, "Notizen")
	require.NoError(t, err)

	m, outcome, err := svc.GenerateAgenda(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, ai.OutcomeFallback, outcome)
	assert.Len(t, assistant.agendaIn.UnansweredQuestions, 1)
	require.Len(t, m.Agenda, 2)
	assert.Equal(t, "Begrüßung", m.Agenda[0].Title)
	assert.Equal(t, 1, m.Agenda[0].Order)
	assert.NotEmpty(t, m.Agenda[0].ID)
	assert.Equal(t, "Notizen", m.Notes)
}

func TestMeetingHTTP(t *testing.T) {
	svc, _, projectID := setup(t)
	h := NewHandler(svc, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/projects/{id}/meeting", h.Get)
	r.Put("/projects/{id}/meeting", h.Put)
	r.Patch("/projects/{id}/meeting/notes", h.PatchNotes)
	r.Post("/projects/{id}/meeting/insights", h.ExtractInsights)
	base := "/projects/" + projectID + "/meeting"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, base, strings.NewReader(`{"agenda":[{"title":""}]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, base, strings.NewReader(`{"agenda":[{"title":"Begrüßung","duration":10}],"notes":"n"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, base+"/insights", strings.NewReader(`{"notes":"Sicherheit zuerst"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ai", rec.Header().Get(ai.OutcomeHeader))
	var m models.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "Sicherheit zuerst", m.Notes)
	assert.Len(t, m.Agenda, 1)
}

func TestDeleteByProjectDropsMeeting(t *testing.T) {
	svc, _, projectID := setup(t)
	ctx := context.Background()
	_, err := svc.PatchNotes(ctx, projectID, "Notizen")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByProject(ctx, projectID))
	_, err = svc.repo.GetByProject(ctx, projectID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/validation"
)

type fakeCompleter struct {
	reply    string
	err      error
	calls    int
	messages []Message
	opts     CompletionOptions
}

func (f *fakeCompleter) Complete(_ context.Context, messages []Message, opts CompletionOptions) (string, error) {
	f.calls++
	f.messages = messages
	f.opts = opts
	return f.reply, f.err
}

type fakeRetriever struct {
	text  string
	err   error
	query string
}

func (f *fakeRetriever) RelevantContext(_ context.Context, _ string, query string, _ int, _ float64) (string, error) {
	f.query = query
	return f.text, f.err
}

func newTestService(c Completer, r ContextRetriever) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(c, r, validation.New(), time.UTC, log)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func TestAnalyzeRFPFallbackWithoutKey(t *testing.T) {
	svc := newTestService(nil, nil)
	analysis, outcome := svc.AnalyzeRFP(context.Background(), AnalyzeRFPInput{ProjectID: "p1", DocumentID: "d1"})
	if outcome != OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", outcome)
	}
	if analysis.MatchScore != 82 || len(analysis.RecommendedResources) != 2 {
		t.Fatalf("unexpected fallback analysis: %+v", analysis)
	}
	if analysis.ProjectID != "p1" || analysis.DocumentID != "d1" || analysis.ID == "" {
		t.Fatalf("fallback analysis not stamped: %+v", analysis)
	}
}

func TestAnalyzeRFPUsesModelOutput(t *testing.T) {
	completer := &fakeCompleter{reply: "Hier die Analyse:\n```json\n{\"summary\":\"Kurz\",\"requirements\":[\"A\"],\"matchScore\":64,\"recommendedResources\":[{\"type\":\"tool\",\"name\":\"Jira\",\"reason\":\"Tracking\",\"priority\":\"low\"}]}\n```"}
	svc := newTestService(completer, nil)

	analysis, outcome := svc.AnalyzeRFP(context.Background(), AnalyzeRFPInput{ProjectID: "p1", DocumentID: "d1"})
	if outcome != OutcomeAI {
		t.Fatalf("expected ai outcome, got %s", outcome)
	}
	if analysis.Summary != "Kurz" || analysis.MatchScore != 64 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if analysis.Deadlines == nil || analysis.Gaps == nil {
		t.Fatalf("missing lists must be empty, not nil")
	}
	if analysis.ProjectID != "p1" || analysis.CreatedAt.IsZero() {
		t.Fatalf("analysis not stamped: %+v", analysis)
	}
	if completer.opts.Temperature == nil || *completer.opts.Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3")
	}
	if completer.messages[0].Role != RoleSystem || completer.messages[0].Content != systemAnalyzeRFP {
		t.Fatalf("unexpected system message")
	}
}

func TestAnalyzeRFPSchemaMismatchFallsBack(t *testing.T) {
	completer := &fakeCompleter{reply: `{"summary":"Kurz","matchScore":140}`}
	svc := newTestService(completer, nil)

	analysis, outcome := svc.AnalyzeRFP(context.Background(), AnalyzeRFPInput{ProjectID: "p1", DocumentID: "d1"})
	if outcome != OutcomeFallback || analysis.MatchScore != 82 {
		t.Fatalf("expected fallback on out of range score, got %s %d", outcome, analysis.MatchScore)
	}
}

func TestAnalyzeRFPAddsRetrievedContext(t *testing.T) {
	completer := &fakeCompleter{reply: `{"summary":"Kurz","matchScore":50}`}
	retriever := &fakeRetriever{text: "[Source 1] Vertrag"}
	svc := newTestService(completer, retriever)

	_, outcome := svc.AnalyzeRFP(context.Background(), AnalyzeRFPInput{ProjectID: "p1", DocumentID: "d1", CorpusName: "c1"})
	if outcome != OutcomeAI {
		t.Fatalf("expected ai outcome, got %s", outcome)
	}
	user := completer.messages[1].Content
	if !strings.Contains(user, "[Source 1] Vertrag") || !strings.Contains(user, "Dokument-ID: d1") {
		t.Fatalf("user message lacks context: %q", user)
	}
	if retriever.query != analyzeRFPMessage("d1") {
		t.Fatalf("unexpected retrieval query %q", retriever.query)
	}
}

func TestAnalyzeRFPIgnoresRetrievalError(t *testing.T) {
	completer := &fakeCompleter{reply: `{"summary":"Kurz","matchScore":50}`}
	svc := newTestService(completer, &fakeRetriever{err: errors.New("vertex down")})

	_, outcome := svc.AnalyzeRFP(context.Background(), AnalyzeRFPInput{ProjectID: "p1", DocumentID: "d1", CorpusName: "c1"})
	if outcome != OutcomeAI {
		t.Fatalf("expected ai outcome, got %s", outcome)
	}
	if completer.messages[1].Content != analyzeRFPMessage("d1") {
		t.Fatalf("expected plain user message")
	}
}

func TestGenerateQuestionsFallback(t *testing.T) {
	svc := newTestService(nil, nil)
	questions, outcome := svc.GenerateQuestions(context.Background(), QuestionsInput{
		ProjectID: "p1",
		Analysis:  &models.RFPAnalysis{Requirements: []string{"Cloud migration"}},
	})
	if outcome != OutcomeFallback || len(questions) != 4 {
		t.Fatalf("expected four fallback questions, got %d (%s)", len(questions), outcome)
	}
	seen := map[string]bool{}
	for _, q := range questions {
		if q.ProjectID != "p1" || q.Status != models.QuestionPending || q.ID == "" {
			t.Fatalf("unexpected question: %+v", q)
		}
		if seen[q.ID] {
			t.Fatalf("duplicate id %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestGenerateQuestionsWithoutAnalysisSkipsModel(t *testing.T) {
	completer := &fakeCompleter{reply: "[]"}
	svc := newTestService(completer, nil)

	_, outcome := svc.GenerateQuestions(context.Background(), QuestionsInput{ProjectID: "p1"})
	if outcome != OutcomeFallback || completer.calls != 0 {
		t.Fatalf("expected fallback without model call, got %s calls=%d", outcome, completer.calls)
	}
}

func TestGenerateQuestionsAcceptsWrappedList(t *testing.T) {
	completer := &fakeCompleter{reply: `{"questions":[{"persona":"technical","question":"Welche Datenbank?","reasoning":"Architektur","priority":"medium","status":"answered","answer":"x"}]}`}
	svc := newTestService(completer, nil)

	questions, outcome := svc.GenerateQuestions(context.Background(), QuestionsInput{ProjectID: "p1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeAI || len(questions) != 1 {
		t.Fatalf("expected one ai question, got %d (%s)", len(questions), outcome)
	}
	q := questions[0]
	if q.Status != models.QuestionPending || q.Answer != "" || q.ProjectID != "p1" || q.ID == "" {
		t.Fatalf("question not normalized: %+v", q)
	}
}

func TestGenerateQuestionsInvalidPersonaFallsBack(t *testing.T) {
	completer := &fakeCompleter{reply: `[{"persona":"legal","question":"?","priority":"high"}]`}
	svc := newTestService(completer, nil)

	questions, outcome := svc.GenerateQuestions(context.Background(), QuestionsInput{ProjectID: "p1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeFallback || len(questions) != 4 {
		t.Fatalf("expected fallback, got %d (%s)", len(questions), outcome)
	}
}

func TestGenerateAgendaFillsIDsAndOrder(t *testing.T) {
	completer := &fakeCompleter{reply: `Agenda: {"agenda":[{"title":"Intro","duration":5},{"id":"x","title":"Technik","order":7}]}`}
	svc := newTestService(completer, nil)

	meeting, outcome := svc.GenerateAgenda(context.Background(), AgendaInput{ProjectID: "p1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeAI || len(meeting.Agenda) != 2 {
		t.Fatalf("unexpected agenda: %+v (%s)", meeting, outcome)
	}
	if meeting.Agenda[0].ID == "" || meeting.Agenda[0].Order != 1 {
		t.Fatalf("first item not filled: %+v", meeting.Agenda[0])
	}
	if meeting.Agenda[1].ID != "x" || meeting.Agenda[1].Order != 7 {
		t.Fatalf("second item changed: %+v", meeting.Agenda[1])
	}
	if meeting.ProjectID != "p1" || meeting.ID == "" || meeting.CreatedAt.IsZero() {
		t.Fatalf("meeting not stamped: %+v", meeting)
	}
}

func TestGenerateAgendaFallback(t *testing.T) {
	svc := newTestService(&fakeCompleter{err: &UpstreamAPIError{StatusCode: 502, Body: "bad gateway"}}, nil)
	meeting, outcome := svc.GenerateAgenda(context.Background(), AgendaInput{ProjectID: "p1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeFallback || len(meeting.Agenda) != 5 {
		t.Fatalf("expected five fallback items, got %d (%s)", len(meeting.Agenda), outcome)
	}
	if meeting.Agenda[0].Title != "Begrüßung und Vorstellung" || meeting.Agenda[4].Order != 5 {
		t.Fatalf("unexpected fallback agenda: %+v", meeting.Agenda)
	}
}

func TestChapterContentProse(t *testing.T) {
	completer := &fakeCompleter{reply: "## Team\n\nUnser Team."}
	svc := newTestService(completer, nil)

	content, outcome := svc.GenerateChapterContent(context.Background(), ChapterContentInput{
		ProjectID: "p1", ChapterID: "c1", ChapterTitle: "Unser Team", Analysis: &models.RFPAnalysis{Summary: "S"},
	})
	if outcome != OutcomeAI || content != "## Team\n\nUnser Team." {
		t.Fatalf("unexpected content %q (%s)", content, outcome)
	}
	if !strings.Contains(completer.messages[0].Content, `"Unser Team"`) {
		t.Fatalf("system prompt lacks chapter title")
	}
	if *completer.opts.Temperature != 0.6 {
		t.Fatalf("expected temperature 0.6")
	}
}

func TestChapterContentFallbacks(t *testing.T) {
	svc := newTestService(&fakeCompleter{reply: "   "}, nil)

	content, outcome := svc.GenerateChapterContent(context.Background(), ChapterContentInput{
		ProjectID: "p1", ChapterID: "c1", ChapterTitle: "Executive Summary", Analysis: &models.RFPAnalysis{},
	})
	if outcome != OutcomeFallback || !strings.HasPrefix(content, "## Executive Summary") {
		t.Fatalf("expected canned executive summary, got %q", content)
	}

	content, _ = svc.GenerateChapterContent(context.Background(), ChapterContentInput{ProjectID: "p1", ChapterID: "c2", ChapterTitle: "Risiken"})
	if !strings.HasPrefix(content, "## Risiken\n\n") {
		t.Fatalf("expected generic template, got %q", content)
	}
}

func TestCoverLetterFallback(t *testing.T) {
	svc := newTestService(nil, nil)
	letter, outcome := svc.GenerateCoverLetter(context.Background(), CoverLetterInput{ProjectID: "p1"})
	if outcome != OutcomeFallback || !strings.HasPrefix(letter, "Sehr geehrte Damen und Herren,") {
		t.Fatalf("unexpected letter %q", letter)
	}
}

func TestProposalStructureResetsChapters(t *testing.T) {
	completer := &fakeCompleter{reply: `[{"title":"Einleitung","content":"schon da","status":"approved"},{"title":"Preise","order":2}]`}
	svc := newTestService(completer, nil)

	proposal, outcome := svc.GenerateProposalStructure(context.Background(), StructureInput{ProjectID: "p1", TemplateID: "t1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeAI || len(proposal.Chapters) != 2 {
		t.Fatalf("unexpected proposal: %+v (%s)", proposal, outcome)
	}
	for _, ch := range proposal.Chapters {
		if ch.Content != "" || ch.Status != models.ChapterPending || ch.ID == "" {
			t.Fatalf("chapter not reset: %+v", ch)
		}
	}
	if proposal.Status != models.ProposalDraft || proposal.Version != 1 || proposal.TemplateID != "t1" {
		t.Fatalf("unexpected proposal header: %+v", proposal)
	}
}

func TestProposalStructureFallback(t *testing.T) {
	svc := newTestService(&fakeCompleter{reply: "Keine Struktur"}, nil)
	proposal, outcome := svc.GenerateProposalStructure(context.Background(), StructureInput{ProjectID: "p1", Analysis: &models.RFPAnalysis{}})
	if outcome != OutcomeFallback || len(proposal.Chapters) != 10 {
		t.Fatalf("expected ten fallback chapters, got %d (%s)", len(proposal.Chapters), outcome)
	}
	if proposal.Chapters[0].Title != "Deckblatt" || proposal.Chapters[9].Order != 10 {
		t.Fatalf("unexpected fallback chapters")
	}
}

func TestExtractInsights(t *testing.T) {
	svc := newTestService(&fakeCompleter{reply: `{"insights":["Budget ok"]}`}, nil)
	result, outcome := svc.ExtractInsights(context.Background(), InsightsInput{ProjectID: "p1", Notes: "Budget ok"})
	if outcome != OutcomeAI || len(result.Insights) != 1 || result.ActionItems == nil {
		t.Fatalf("unexpected insights: %+v (%s)", result, outcome)
	}

	svc = newTestService(&fakeCompleter{reply: `{"foo":1}`}, nil)
	result, outcome = svc.ExtractInsights(context.Background(), InsightsInput{ProjectID: "p1", Notes: "x"})
	if outcome != OutcomeFallback || len(result.Insights) != 3 || len(result.ActionItems) != 3 {
		t.Fatalf("expected fallback insights, got %+v", result)
	}

	svc = newTestService(&fakeCompleter{reply: `{"insights":[],"actionItems":[]}`}, nil)
	result, outcome = svc.ExtractInsights(context.Background(), InsightsInput{ProjectID: "p1", Notes: "x"})
	if outcome != OutcomeFallback || len(result.Insights) != 3 {
		t.Fatalf("empty lists must fall back, got %+v (%s)", result, outcome)
	}

	svc = newTestService(&fakeCompleter{reply: `{"insights":[],"actionItems":["Angebot senden"]}`}, nil)
	result, outcome = svc.ExtractInsights(context.Background(), InsightsInput{ProjectID: "p1", Notes: "x"})
	if outcome != OutcomeAI || len(result.ActionItems) != 1 {
		t.Fatalf("action items alone are a valid result, got %+v (%s)", result, outcome)
	}
}

func TestAnalysisPromptsCarryOnlyContent(t *testing.T) {
	completer := &fakeCompleter{reply: `[]`}
	svc := newTestService(completer, nil)
	analysis := &models.RFPAnalysis{Summary: "Cloud-Migration", Requirements: []string{"Azure"}, MatchScore: 80}

	svc.GenerateQuestions(context.Background(), QuestionsInput{ProjectID: "p1", Analysis: analysis})
	user := completer.messages[1].Content
	for _, field := range []string{`"id"`, `"createdAt"`, `"documentId"`, `"projectId"`, `"gaps"`} {
		if strings.Contains(user, field) {
			t.Fatalf("prompt leaks %s:\n%s", field, user)
		}
	}
	if !strings.Contains(user, `"summary": "Cloud-Migration"`) || !strings.Contains(user, `"matchScore": 80`) {
		t.Fatalf("prompt lost analysis content:\n%s", user)
	}

	svc.GenerateAgenda(context.Background(), AgendaInput{
		ProjectID:           "p1",
		Analysis:            analysis,
		UnansweredQuestions: []models.Question{{ID: "q1", ProjectID: "p1", Question: "Budget?", Persona: models.PersonaSales, Priority: models.PriorityHigh}},
	})
	user = completer.messages[1].Content
	if strings.Contains(user, `"id"`) || strings.Contains(user, `"createdAt"`) || !strings.Contains(user, `"question": "Budget?"`) {
		t.Fatalf("unexpected agenda prompt:\n%s", user)
	}

	if got := questionsMessage(nil); !strings.Contains(got, "null") {
		t.Fatalf("missing analysis renders as null, got %q", got)
	}
}

func TestComplianceFallbackDependsOnChapters(t *testing.T) {
	svc := newTestService(nil, nil)
	filled := &models.Proposal{Chapters: []models.ProposalChapter{{Title: "A", Content: "x"}}}
	checks, outcome := svc.CheckCompliance(context.Background(), ComplianceInput{ProjectID: "p1", Proposal: filled})
	if outcome != OutcomeFallback || len(checks) != 5 {
		t.Fatalf("expected five checks, got %d", len(checks))
	}
	if checks[3].Status != models.CheckPass {
		t.Fatalf("expected pass for filled chapters, got %s", checks[3].Status)
	}

	open := &models.Proposal{Chapters: []models.ProposalChapter{{Title: "A"}}}
	checks, _ = svc.CheckCompliance(context.Background(), ComplianceInput{ProjectID: "p1", Proposal: open})
	if checks[3].Status != models.CheckWarning {
		t.Fatalf("expected warning for empty chapter, got %s", checks[3].Status)
	}

	checks, _ = svc.CheckCompliance(context.Background(), ComplianceInput{ProjectID: "p1"})
	if checks[3].Status != models.CheckWarning {
		t.Fatalf("expected warning without proposal, got %s", checks[3].Status)
	}
}

func TestComplianceUsesModel(t *testing.T) {
	completer := &fakeCompleter{reply: `{"checks":[{"item":"Budget","status":"fail","message":"zu teuer"}]}`}
	svc := newTestService(completer, nil)
	checks, outcome := svc.CheckCompliance(context.Background(), ComplianceInput{
		ProjectID: "p1",
		Proposal:  &models.Proposal{},
		Analysis:  &models.RFPAnalysis{},
	})
	if outcome != OutcomeAI || len(checks) != 1 || checks[0].Status != models.CheckFail {
		t.Fatalf("unexpected checks: %+v (%s)", checks, outcome)
	}
	if *completer.opts.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2")
	}
}

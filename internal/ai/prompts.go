package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"salesagent-backend/internal/models"
)

const (
	systemAnalyzeRFP = `Du bist ein erfahrener Vertriebsexperte und RFP-Analyst. Analysiere das folgende RFP-Dokument und erstelle eine strukturierte Analyse im JSON-Format mit folgenden Feldern:
- summary: Eine Zusammenfassung des RFP (2-3 Sätze)
- requirements: Array mit den wichtigsten Anforderungen
- deadlines: Array mit identifizierten Fristen
- budgetHints: Array mit Budget-Hinweisen
- gaps: Array mit identifizierten Lücken oder fehlenden Informationen
- matchScore: Geschätzte Übereinstimmung mit typischen Beratungsleistungen (0-100)
- recommendedResources: Array mit empfohlenen Ressourcen (type, name, reason, priority)`

	systemGenerateQuestions = `Du bist ein erfahrener Vertriebsberater. Basierend auf der RFP-Analyse, generiere Fragen aus verschiedenen Perspektiven:
1. Sales-Perspektive: Budget, Timeline, Entscheidungsprozess
2. Technische Perspektive: Spezifikationen, Integration, Security
3. Projektmanagement-Perspektive: Ressourcen, Risiken
4. Kunden-Perspektive: Pain-Points, Erwartungen

Für jede Frage gib an:
- persona: 'sales' | 'technical' | 'project_management' | 'customer'
- question: Die Frage
- reasoning: Warum diese Frage wichtig ist
- priority: 'high' | 'medium' | 'low'

Gib die Fragen als JSON-Array zurück.`

	systemGenerateAgenda = `Du bist ein erfahrener Projektmanager. Erstelle eine professionelle Meeting-Agenda für ein Klärungsgespräch mit dem Kunden. Die Agenda sollte:
- Strukturiert und zeitlich geplant sein
- Alle offenen Punkte aus dem RFP adressieren
- Raum für Fragen und Diskussion lassen

Gib die Agenda als JSON-Objekt mit einem "agenda"-Array zurück. Jedes Element hat:
- id: eindeutige ID
- title: Agendapunkt
- description: Kurze Beschreibung
- duration: Geschätzte Dauer in Minuten
- order: Reihenfolge`

	systemChapterContentTemplate = `Du bist ein erfahrener Angebotsschreiber für IT-Beratungsprojekte. Schreibe den Inhalt für das Kapitel "%s" eines Beratungsangebots.

Der Text sollte:
- Professionell und überzeugend sein
- Auf die spezifischen Kundenanforderungen eingehen
- Klar strukturiert sein (Markdown-Format)
- Circa 200-400 Wörter umfassen

Gib nur den Kapitelinhalt zurück, ohne zusätzliche Erklärungen.`

	systemCoverLetter = `Du bist ein erfahrener Vertriebsprofi. Schreibe ein professionelles Anschreiben für die Übersendung eines Beratungsangebots. Das Anschreiben sollte:
- Persönlich und professionell sein
- Die wichtigsten Vorteile hervorheben
- Zum Handeln auffordern
- Etwa 150-200 Wörter umfassen

Gib nur den Brief-Text zurück.`

	systemProposalStructure = `Du bist ein erfahrener Angebotsschreiber. Erstelle eine professionelle Kapitelstruktur für ein Beratungsangebot. Die Struktur sollte:
- Alle wichtigen Aspekte des RFP adressieren
- Dem Standard-Format für Beratungsangebote folgen
- Klar und logisch aufgebaut sein

Gib die Struktur als JSON-Array von Kapiteln zurück:
- id: eindeutige ID
- title: Kapitelüberschrift
- order: Reihenfolge
- status: 'pending'`

	systemExtractInsights = `Du bist ein erfahrener Business Analyst. Analysiere die Meeting-Notizen und extrahiere:
1. Key-Insights: Wichtige Erkenntnisse aus dem Gespräch
2. Action Items: Konkrete To-Dos für das Team

Gib das Ergebnis als JSON zurück mit:
- insights: Array von Strings mit den wichtigsten Erkenntnissen
- actionItems: Array von Strings mit konkreten Aufgaben`

	systemComplianceCheck = `Du bist ein Qualitätsprüfer für Beratungsangebote. Führe eine Vollständigkeitsprüfung durch und prüfe:
1. Sind alle RFP-Anforderungen adressiert?
2. Ist das Angebot vollständig?
3. Gibt es Inkonsistenzen?
4. Fehlen wichtige Informationen?

Gib das Ergebnis als JSON-Array zurück:
- item: Was geprüft wurde
- status: 'pass' | 'warning' | 'fail'
- message: Erklärung`
)

// Generic role prompts, used by document analysis over a retrieval corpus.
var RolePrompts = map[string]string{
	"rfp": `Du bist ein erfahrener Vertriebsexperte und RFP-Analyst. Analysiere RFP-Dokumente und erstelle strukturierte Analysen mit:
- Zusammenfassung des Projekts
- Identifizierte Anforderungen
- Wichtige Fristen
- Budget-Hinweise
- Lücken und fehlende Informationen
- Übereinstimmung mit typischen Beratungsleistungen
- Empfohlene Ressourcen`,
	"questions": `Du bist ein erfahrener Vertriebsberater. Generiere Fragen aus verschiedenen Perspektiven:
1. Sales: Budget, Timeline, Entscheidungsprozess
2. Technisch: Spezifikationen, Integration, Security
3. Projektmanagement: Ressourcen, Risiken
4. Kunde: Pain-Points, Erwartungen

Für jede Frage: Persona, Frage, Begründung, Priorität (high/medium/low)`,
	"proposal": `Du bist ein erfahrener Angebotsschreiber für IT-Beratungsprojekte. Schreibe:
- Professionelle und überzeugende Texte
- Kundenspezifische Inhalte
- Klar strukturierte Kapitel
- Fokus auf Kundennutzen und USPs`,
	"compliance": `Du bist ein Qualitätsprüfer für Beratungsangebote. Prüfe:
- Vollständigkeit (alle RFP-Anforderungen adressiert?)
- Konsistenz (keine Widersprüche?)
- Compliance (rechtliche Anforderungen erfüllt?)
- Qualität (professionelle Darstellung?)`,
}

const DefaultCustomPrompt = "Du bist ein hilfreicher Assistent für Dokumentenanalyse."

// SystemPromptFor picks the role prompt for a document analysis type.
// Unknown types use the custom prompt or the default assistant prompt.
func SystemPromptFor(analysisType, customPrompt string) string {
	if p, ok := RolePrompts[analysisType]; ok {
		return p
	}
	if strings.TrimSpace(customPrompt) != "" {
		return customPrompt
	}
	return DefaultCustomPrompt
}

func chapterContentPrompt(title string) string {
	return fmt.Sprintf(systemChapterContentTemplate, title)
}

func analyzeRFPMessage(documentID string) string {
	return "Analysiere dieses RFP-Dokument und gib die Analyse als JSON zurück. Dokument-ID: " + documentID
}

// analysisDigest is the part of an analysis the model gets to see. Storage
// fields stay out of the prompt.
type analysisDigest struct {
	Summary              string                          `json:"summary,omitempty"`
	Requirements         []string                        `json:"requirements,omitempty"`
	Deadlines            []string                        `json:"deadlines,omitempty"`
	BudgetHints          []string                        `json:"budgetHints,omitempty"`
	Gaps                 []string                        `json:"gaps,omitempty"`
	MatchScore           int                             `json:"matchScore,omitempty"`
	RecommendedResources []models.ResourceRecommendation `json:"recommendedResources,omitempty"`
}

func digestOf(analysis *models.RFPAnalysis) *analysisDigest {
	if analysis == nil {
		return nil
	}
	return &analysisDigest{
		Summary:              analysis.Summary,
		Requirements:         analysis.Requirements,
		Deadlines:            analysis.Deadlines,
		BudgetHints:          analysis.BudgetHints,
		Gaps:                 analysis.Gaps,
		MatchScore:           analysis.MatchScore,
		RecommendedResources: analysis.RecommendedResources,
	}
}

func questionsMessage(analysis *models.RFPAnalysis) string {
	return "RFP-Analyse:\n" + indentJSON(digestOf(analysis)) + "\n\nGeneriere 10-15 relevante Fragen als JSON-Array."
}

type questionDigest struct {
	Persona   string `json:"persona"`
	Question  string `json:"question"`
	Reasoning string `json:"reasoning,omitempty"`
	Priority  string `json:"priority"`
}

func agendaMessage(analysis *models.RFPAnalysis, open []models.Question) string {
	questions := make([]questionDigest, 0, len(open))
	for _, q := range open {
		questions = append(questions, questionDigest{Persona: q.Persona, Question: q.Question, Reasoning: q.Reasoning, Priority: q.Priority})
	}
	return "RFP-Analyse:\n" + indentJSON(digestOf(analysis)) +
		"\n\nOffene Fragen:\n" + indentJSON(questions) +
		"\n\nErstelle eine Meeting-Agenda."
}

func chapterContentMessage(title string, analysis *models.RFPAnalysis, meeting *models.Meeting) string {
	summary := "Nicht verfügbar"
	requirements := []string{}
	if analysis != nil {
		if analysis.Summary != "" {
			summary = analysis.Summary
		}
		if analysis.Requirements != nil {
			requirements = analysis.Requirements
		}
	}
	insights := []string{}
	if meeting != nil && meeting.Insights != nil {
		insights = meeting.Insights
	}
	return fmt.Sprintf("Kontext:\nRFP-Zusammenfassung: %s\nAnforderungen: %s\nMeeting-Insights: %s\n\nSchreibe den Inhalt für das Kapitel \"%s\".",
		summary, compactJSON(requirements), compactJSON(insights), title)
}

func coverLetterMessage(analysis *models.RFPAnalysis) string {
	summary := "IT-Beratungsprojekt"
	if analysis != nil && analysis.Summary != "" {
		summary = analysis.Summary
	}
	return "Projektkontext:\n" + summary + "\n\nSchreibe ein Anschreiben für die Übersendung des Angebots."
}

func structureMessage(analysis *models.RFPAnalysis, meeting *models.Meeting) string {
	insights := []string{}
	if meeting != nil && meeting.Insights != nil {
		insights = meeting.Insights
	}
	return "RFP-Analyse:\n" + indentJSON(digestOf(analysis)) +
		"\n\nMeeting-Insights:\n" + indentJSON(insights) +
		"\n\nErstelle eine Kapitelstruktur für das Angebot."
}

func insightsMessage(notes string) string {
	return "Meeting-Notizen:\n" + notes + "\n\nExtrahiere Insights und Action Items."
}

type chapterDigest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

func complianceMessage(analysis *models.RFPAnalysis, proposal *models.Proposal) string {
	requirements := []string{}
	if analysis != nil && analysis.Requirements != nil {
		requirements = analysis.Requirements
	}
	chapters := make([]chapterDigest, 0)
	if proposal != nil {
		for _, ch := range proposal.Chapters {
			chapters = append(chapters, chapterDigest{Title: ch.Title, Status: ch.Status})
		}
	}
	return "RFP-Anforderungen:\n" + compactJSON(requirements) +
		"\n\nAngebots-Kapitel:\n" + compactJSON(chapters) +
		"\n\nFühre die Prüfung durch."
}

// withRetrievedContext prefixes a user message with document excerpts.
func withRetrievedContext(contextText, query string) string {
	return "Relevant context from documents:\n\n" + contextText + "\n\n---\n\nUser query: " + query
}

// DocumentAnalysisMessage frames a query over numbered document excerpts.
func DocumentAnalysisMessage(contextText, query string) string {
	return "Basierend auf den folgenden Dokumentauszügen, beantworte die Frage oder führe die Analyse durch.\n\n" +
		"DOKUMENTKONTEXT:\n" + contextText + "\n\n" +
		"ANFRAGE:\n" + query + "\n\n" +
		"Antworte strukturiert und beziehe dich auf die relevanten Stellen im Dokumentkontext."
}

func indentJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}

func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

package questions

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"salesagent-backend/internal/models"
)

var exportHeader = []string{"Nr.", "Persona", "Frage", "Begründung", "Priorität", "Antwort"}

var personaLabels = map[string]string{
	models.PersonaSales:             "Sales",
	models.PersonaTechnical:         "Technisch",
	models.PersonaProjectManagement: "Projektmanagement",
	models.PersonaCustomer:          "Kunde",
}

var priorityLabels = map[string]string{
	models.PriorityHigh:   "Hoch",
	models.PriorityMedium: "Mittel",
	models.PriorityLow:    "Niedrig",
}

var ErrInvalidSheet = errors.New("invalid answer sheet")

func ExportFilename(projectID string) string {
	return "Fragen_" + projectID + ".csv"
}

// ExportCSV renders the questions as the sheet handed to the customer.
// Rows are numbered from 1 in list order.
func ExportCSV(items []models.Question) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i, q := range items {
		persona, ok := personaLabels[q.Persona]
		if !ok {
			persona = q.Persona
		}
		priority, ok := priorityLabels[q.Priority]
		if !ok {
			priority = priorityLabels[models.PriorityLow]
		}
		row := []string{strconv.Itoa(i + 1), persona, q.Question, q.Reasoning, priority, q.Answer}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseAnswerSheet reads a sheet in the export layout and maps each
// non-empty answer back to the question numbered in its first column.
func ParseAnswerSheet(r io.Reader, items []models.Question) ([]AnswerInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	answerCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), "Antwort") {
			answerCol = i
		}
	}
	if answerCol < 0 {
		return nil, fmt.Errorf("%w: missing Antwort column", ErrInvalidSheet)
	}

	var out []AnswerInput
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		if len(row) <= answerCol {
			continue
		}
		nr, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || nr < 1 || nr > len(items) {
			continue
		}
		answer := strings.TrimSpace(row[answerCol])
		if answer == "" {
			continue
		}
		out = append(out, AnswerInput{ID: items[nr-1].ID, Answer: answer})
	}
	return out, nil
}

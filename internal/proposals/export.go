package proposals

import (
	"sort"
	"strings"

	"salesagent-backend/internal/models"
)

func ExportFilename(projectID string) string {
	return "Angebot_" + projectID + ".txt"
}

// ExportText renders the chapters in order as one markdown document.
func ExportText(p models.Proposal) string {
	chapters := make([]models.ProposalChapter, len(p.Chapters))
	copy(chapters, p.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Order < chapters[j].Order })

	parts := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		content := ch.Content
		if strings.TrimSpace(content) == "" {
			content = pendingContent
		}
		parts = append(parts, "# "+ch.Title+"\n\n"+content)
	}
	if len(parts) == 0 {
		return "Kein Inhalt"
	}
	return strings.Join(parts, "\n\n---\n\n")
}

package notifications

import (
	"bytes"
	"html/template"
	"strings"
)

type ProposalMail struct {
	ToEmail     string
	ToName      string
	CompanyName string
	ProjectName string
	CoverLetter string
	ProposalURL string
}

const proposalTemplate = `<!DOCTYPE html>
<html>
<body>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
  {{if .ProposalURL}}<p><a href="{{.ProposalURL}}">Angebot ansehen</a></p>{{end}}
  <hr/>
  <p style="color:#666;font-size:12px">{{.SenderName}} · Angebot für {{.CompanyName}} · {{.ProjectName}}</p>
</body>
</html>`

var proposalTmpl = template.Must(template.New("proposal").Parse(proposalTemplate))

type proposalData struct {
	Paragraphs  []string
	ProposalURL string
	SenderName  string
	CompanyName string
	ProjectName string
}

func buildProposalHTML(mail ProposalMail, senderName string) (string, error) {
	data := proposalData{
		Paragraphs:  paragraphs(mail.CoverLetter),
		ProposalURL: mail.ProposalURL,
		SenderName:  senderName,
		CompanyName: mail.CompanyName,
		ProjectName: mail.ProjectName,
	}
	if data.CompanyName == "" {
		data.CompanyName = mail.ToName
	}
	var buf bytes.Buffer
	if err := proposalTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// paragraphs splits plain or markdown-ish text on blank lines and drops
// the bold markers the letter generator tends to emit.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(strings.ReplaceAll(block, "**", ""))
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

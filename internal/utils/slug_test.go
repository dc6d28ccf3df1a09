package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ausschreibung Größe & Umfang": "ausschreibung-groesse-und-umfang",
		"  RFP/2026 -- final ":         "rfp-2026-final",
		"":                             "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"Lastenheft Übersicht.PDF":  "lastenheft-uebersicht.pdf",
		`C:\Users\eva\Angebot.docx`: "angebot.docx",
		"../../etc/passwd":          "passwd",
		"???.txt":                   "file.txt",
		"notes.tar gz":              "notes-tar-gz",
	}
	for in, want := range cases {
		if got := SafeFilename(in); got != want {
			t.Fatalf("SafeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

package utils

import (
	"path"
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
var multiDash = regexp.MustCompile(`-+`)
var extChars = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

var germanFolding = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
)

// Slugify lowercases input and reduces it to ASCII letters, digits and
// single dashes. German umlauts are folded rather than dropped.
func Slugify(input string) string {
	s := germanFolding.Replace(strings.TrimSpace(input))
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "&", " und ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s
}

// SafeFilename slugifies the base name of an uploaded file and keeps a
// plausible extension. An empty result becomes "file".
func SafeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))
	if !extChars.MatchString(ext) {
		base, ext = name, ""
	}
	slug := Slugify(base)
	if slug == "" {
		slug = "file"
	}
	return slug + ext
}

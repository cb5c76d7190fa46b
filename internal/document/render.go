// Package document renders petition markdown files and manages the on-disk
// document set: one file per published survey response, addressed by the
// response id embedded in its front matter.
package document

import (
	"strings"

	"github.com/civiclab/qualsync/pkg/models"
)

// Render produces the full petition file for a row: a front-matter block,
// a blank line, the body, and exactly one trailing newline. Rendering is a
// pure function; the reconciler's no-op detection depends on identical
// rows producing byte-identical output.
func Render(row models.SurveyRow) []byte {
	front := []string{
		"---",
		"layout: petition",
		"title: " + quoteYAML(row.Title),
		`qualtrics_response_id: "` + row.ResponseID + `"`,
		`qualtrics_recorded_date: "` + row.RecordedDate + `"`,
		"source: qualtrics",
		"---",
		"",
	}
	body := strings.TrimRight(row.Body, " \t\n")
	return []byte(strings.Join(front, "\n") + "\n" + body + "\n")
}

// quoteYAML wraps a value in double quotes, escaping backslashes and
// embedded quotes.
func quoteYAML(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

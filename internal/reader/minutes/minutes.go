// Package minutes reads meeting topics from a directory of Markdown
// meeting notes named yyyy-mm-dd[_topic].md. Minutes carry no
// duration; they contribute description fragments to the activity
// ledger.
package minutes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/report"
)

// filePattern matches minutes file names: a date, an optional topic
// suffix, and the .md extension.
var filePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_?([a-zA-Z-]*)\.md$`)

// Read scans dir for minutes files dated within [from, to) and
// returns one zero-duration calendar EventRecord per file. The topic
// is the first Markdown heading of the file, falling back to the
// topic part of the file name. Files whose names don't match the
// convention are ignored; unreadable files become diagnostics.
func Read(dir string, from, to time.Time, loc *time.Location) ([]model.EventRecord, []report.Diagnostic, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewNotFound(fmt.Sprintf("minutes directory %s", dir))
		}
		return nil, nil, errors.NewInternal(err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var events []model.EventRecord
	var skipped []report.Diagnostic
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		groups := filePattern.FindStringSubmatch(de.Name())
		if groups == nil {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", groups[1], loc)
		if err != nil {
			continue
		}
		// Anchor mid-day so UTC normalization cannot shift the date.
		stamp := date.Add(12 * time.Hour)
		if stamp.Before(from) || !stamp.Before(to) {
			continue
		}

		path := filepath.Join(dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, report.Diagnostic{
				Source: string(model.SourceCalendar),
				Reason: fmt.Sprintf("unreadable minutes: %v", err),
				Record: de.Name(),
			})
			continue
		}

		topic := firstHeading(data)
		if len(topic) < 3 {
			// Headline too thin, use the file name's topic part.
			topic = groups[2]
		}
		if topic == "" {
			skipped = append(skipped, report.Diagnostic{
				Source: string(model.SourceCalendar),
				Reason: "no topic in headline or file name",
				Record: de.Name(),
			})
			continue
		}

		events = append(events, model.EventRecord{
			ID:        de.Name(),
			Source:    model.SourceCalendar,
			Timestamp: stamp.UTC(),
			Duration:  0,
			Fields: model.Fields{
				"subject": topic,
			},
		})
	}
	return events, skipped, nil
}

// firstHeading returns the text of the first heading in a Markdown
// document, or "" when there is none.
func firstHeading(source []byte) string {
	doc := goldmark.DefaultParser().Parse(gmtext.NewReader(source))
	var topic []byte
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				topic = append(topic, t.Segment.Value(source)...)
			}
		}
		return ast.WalkStop, nil
	})
	return strings.TrimSpace(string(topic))
}

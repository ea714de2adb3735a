package ui

import (
	"fmt"
	"strings"

	"coursecast/internal/deploy"
)

// RenderReport formats a deployment report for the terminal.
func RenderReport(report *deploy.Report) string {
	s := DefaultStyles()
	var b strings.Builder

	title := "Deployment report"
	if report.DryRun {
		title += " " + s.Badge.Render("DRY RUN")
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	for _, r := range report.Results {
		switch {
		case !r.Succeeded():
			b.WriteString(fmt.Sprintf("%s %s: %s\n",
				s.Error.Render("✗"), r.CourseName, r.Err))
		case report.DryRun:
			b.WriteString(fmt.Sprintf("%s %s\n",
				s.Warning.Render("~"), r.Message))
		default:
			b.WriteString(fmt.Sprintf("%s %s: %s\n  %s\n",
				s.Success.Render("✓"), r.CourseName, r.Message, s.Muted.Render(r.URL)))
		}
	}

	b.WriteString(s.RenderDivider(40))
	b.WriteString("\n")

	summary := fmt.Sprintf("%d/%d succeeded", report.Succeeded, report.Attempted)
	if report.Succeeded == report.Attempted {
		b.WriteString(s.Success.Render(summary))
	} else {
		b.WriteString(s.Warning.Render(summary))
	}
	b.WriteString(s.Muted.Render("  run " + report.RunID))
	b.WriteString("\n")
	return b.String()
}

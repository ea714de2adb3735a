package content

import (
	"errors"
	"fmt"
	"html"
	"regexp"
)

// Errors surfaced by the template link flow. Both are recovered by
// re-prompting the operator.
var (
	ErrInvalidTemplateURL = errors.New("not a shareable Google Docs/Sheets/Slides URL")
	ErrIDExtraction       = errors.New("could not extract document id from URL")
)

// MaxTemplateLinks is the soft cap on template links per assignment. Going
// beyond it prompts for confirmation; it is not a hard error.
const MaxTemplateLinks = 3

// DocumentKind is the Google document family a template link points at.
type DocumentKind string

const (
	DocKindDocument     DocumentKind = "document"
	DocKindSpreadsheet  DocumentKind = "spreadsheets"
	DocKindPresentation DocumentKind = "presentation"
)

func (k DocumentKind) Label() string {
	switch k {
	case DocKindSpreadsheet:
		return "spreadsheet"
	case DocKindPresentation:
		return "presentation"
	default:
		return "document"
	}
}

// TemplateLink is a generated "make your own copy" link derived from a
// shared Google document URL. Deterministic in its inputs.
type TemplateLink struct {
	SourceURL   string
	Kind        DocumentKind
	DocumentID  string
	CopyURL     string
	Name        string
	Description string
}

var templateURLPattern = regexp.MustCompile(
	`^https://docs\.google\.com/(document|spreadsheets|presentation)/d/([A-Za-z0-9_-]+)/?.*$`)

// BuildTemplateLink validates a shared document URL, extracts the document
// id, and derives the /copy URL for the same document kind.
func BuildTemplateLink(sharedURL, name, description string) (*TemplateLink, error) {
	m := templateURLPattern.FindStringSubmatch(sharedURL)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTemplateURL, sharedURL)
	}
	kind, id := DocumentKind(m[1]), m[2]
	if id == "" {
		// The pattern matched but yielded no id: internal inconsistency.
		return nil, fmt.Errorf("%w: %q", ErrIDExtraction, sharedURL)
	}

	return &TemplateLink{
		SourceURL:   sharedURL,
		Kind:        kind,
		DocumentID:  id,
		CopyURL:     fmt.Sprintf("https://docs.google.com/%s/d/%s/copy", kind, id),
		Name:        name,
		Description: description,
	}, nil
}

// Render produces the bordered call-to-action block for one template link:
// heading, optional description, the copy link opening in a new tab, and an
// instructional caption.
func (t *TemplateLink) Render() string {
	name := html.EscapeString(t.Name)
	if name == "" {
		name = "Template " + t.Kind.Label()
	}

	frag := `<div style="border: 2px solid #0374B5; border-radius: 6px; padding: 16px; margin: 12px 0;">` +
		fmt.Sprintf(`<h3 style="margin-top: 0;">%s</h3>`, name)

	if t.Description != "" {
		frag += fmt.Sprintf(`<p>%s</p>`, html.EscapeString(t.Description))
	}

	frag += fmt.Sprintf(
		`<p><a href="%s" target="_blank" rel="noopener" style="font-weight: bold;">Make your own copy of this %s</a></p>`,
		t.CopyURL, t.Kind.Label())
	frag += fmt.Sprintf(
		`<p style="font-size: small; color: #555;">Clicking the link opens Google %s and creates a copy in your own drive.</p>`,
		titleCase(t.Kind.Label()))
	frag += `</div>`
	return frag
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

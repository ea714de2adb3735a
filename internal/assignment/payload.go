// Package assignment builds the normalized assignment request body from
// guided operator input, delegating fragment generation to content and file
// uploads to the canvas gateway.
package assignment

import (
	"fmt"
	"strings"
	"time"
)

// GradingType is one of Canvas's four canonical grading schemes.
type GradingType string

const (
	GradingPoints   GradingType = "points"
	GradingPercent  GradingType = "percent"
	GradingLetter   GradingType = "letter_grade"
	GradingPassFail GradingType = "pass_fail"
)

// SubmissionType is one canonical Canvas submission channel.
type SubmissionType string

const (
	SubmissionTextEntry    SubmissionType = "online_text_entry"
	SubmissionUpload       SubmissionType = "online_upload"
	SubmissionExternalTool SubmissionType = "external_tool"
	SubmissionNone         SubmissionType = "none"
)

// Payload is the validated assignment body. It is built once per deployment,
// immutable afterwards, and the identical payload goes to every selected
// course. Serialized exactly once at the gateway boundary; optional fields
// are omitted entirely rather than sent as null.
type Payload struct {
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	PointsPossible    float64          `json:"points_possible"`
	GradingType       GradingType      `json:"grading_type"`
	SubmissionTypes   []SubmissionType `json:"submission_types"`
	Published         bool             `json:"published"`
	AssignmentGroupID int64            `json:"assignment_group_id,omitempty"`
	DueAt             string           `json:"due_at,omitempty"`
	UnlockAt          string           `json:"unlock_at,omitempty"`
	LockAt            string           `json:"lock_at,omitempty"`
}

// Summary renders the one-screen confirmation summary shown before deploy.
func (p *Payload) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:            %s\n", p.Name)
	fmt.Fprintf(&b, "Points:          %g\n", p.PointsPossible)
	fmt.Fprintf(&b, "Grading type:    %s\n", p.GradingType)

	types := make([]string, len(p.SubmissionTypes))
	for i, st := range p.SubmissionTypes {
		types[i] = string(st)
	}
	fmt.Fprintf(&b, "Submission:      %s\n", strings.Join(types, ", "))
	fmt.Fprintf(&b, "Published:       %v\n", p.Published)

	if p.DueAt != "" {
		fmt.Fprintf(&b, "Due at:          %s\n", p.DueAt)
	}
	if p.UnlockAt != "" {
		fmt.Fprintf(&b, "Unlock at:       %s\n", p.UnlockAt)
	}
	if p.LockAt != "" {
		fmt.Fprintf(&b, "Lock at:         %s\n", p.LockAt)
	}
	if p.AssignmentGroupID != 0 {
		fmt.Fprintf(&b, "Group id:        %d\n", p.AssignmentGroupID)
	}
	fmt.Fprintf(&b, "Description:     %d characters\n", len(p.Description))
	return b.String()
}

// dateLayouts are the accepted local date-time input forms, most specific
// first. A bare date means local midnight.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an operator-supplied local date-time and normalizes it to
// UTC RFC 3339 for the payload.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (expected e.g. 2026-09-01 23:59)", s)
}

// submissionChoices maps the fixed menu onto the canonical submission-type
// sets. Choice 3 ("both") is the only two-element set.
var submissionChoices = []struct {
	Label string
	Types []SubmissionType
}{
	{"Online text entry", []SubmissionType{SubmissionTextEntry}},
	{"Online file upload", []SubmissionType{SubmissionUpload}},
	{"Both text entry and file upload", []SubmissionType{SubmissionTextEntry, SubmissionUpload}},
	{"External tool", []SubmissionType{SubmissionExternalTool}},
	{"No submission", []SubmissionType{SubmissionNone}},
}

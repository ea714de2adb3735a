package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursecast/internal/canvas"
)

// scriptPrompter replays queued answers for each prompt method.
type scriptPrompter struct {
	t        *testing.T
	lines    []string
	choices  []int
	confirms []bool
}

func (s *scriptPrompter) Line(label string) (string, error) {
	if len(s.lines) == 0 {
		s.t.Fatalf("unexpected Line(%q): script exhausted", label)
	}
	v := s.lines[0]
	s.lines = s.lines[1:]
	return v, nil
}

func (s *scriptPrompter) Secret(label string) (string, error) { return s.Line(label) }

func (s *scriptPrompter) Confirm(label string, def bool) (bool, error) {
	if len(s.confirms) == 0 {
		s.t.Fatalf("unexpected Confirm(%q): script exhausted", label)
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *scriptPrompter) Choose(label string, options []string) (int, error) {
	if len(s.choices) == 0 {
		s.t.Fatalf("unexpected Choose(%q): script exhausted", label)
	}
	v := s.choices[0]
	s.choices = s.choices[1:]
	if v < 0 || v >= len(options) {
		s.t.Fatalf("scripted choice %d out of range for %q", v, label)
	}
	return v, nil
}

func newTestBuilder(p *scriptPrompter, uploader Uploader, dryRun bool) (*Builder, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewBuilder(p, uploader, nil, dryRun, out, zap.NewNop()), out
}

func TestBuild_RepromptsOnInvalidInput(t *testing.T) {
	p := &scriptPrompter{
		t: t,
		// empty name, valid name, description, bad points twice, good
		// points, default grading, bad due date then skip, unlock, lock
		lines:    []string{"", "Homework 1", "", "abc", "-5", "10.5", "", "not-a-date", "", "", ""},
		choices:  []int{3, 2}, // done adding content; submission "both"
		confirms: []bool{false},
	}
	b, out := newTestBuilder(p, nil, false)

	payload, err := b.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Homework 1", payload.Name)
	assert.Equal(t, 10.5, payload.PointsPossible)
	assert.Equal(t, GradingPoints, payload.GradingType, "blank grading type defaults to points")
	assert.Empty(t, payload.DueAt, "rejected date string must never end up in the payload")
	assert.False(t, payload.Published)

	assert.Contains(t, out.String(), "A name is required.")
	assert.Contains(t, out.String(), "Points must be a non-negative number.")
	assert.Contains(t, out.String(), "unrecognized date")
}

func TestBuild_SubmissionTypeBothMapsToTwoElementSet(t *testing.T) {
	p := &scriptPrompter{
		t:        t,
		lines:    []string{"HW", "", "1", "", "", "", ""},
		choices:  []int{3, 2},
		confirms: []bool{false},
	}
	b, _ := newTestBuilder(p, nil, false)

	payload, err := b.Build(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, payload.SubmissionTypes, 2)
	assert.ElementsMatch(t,
		[]SubmissionType{SubmissionTextEntry, SubmissionUpload},
		payload.SubmissionTypes)
}

func TestBuild_DescriptionAssemblyOrder(t *testing.T) {
	p := &scriptPrompter{
		t: t,
		lines: []string{
			"HW 2",    // name
			"intro",   // free text
			"http://example.com/chart.png", // embed URL (upgraded)
			"Enrollment chart",             // alt
			"https://docs.google.com/document/d/ABC123/edit", // template URL
			"Outline", // template name
			"",        // template description
			"0",       // points
			"2",       // grading type: percent
			"", "", "", // dates skipped
		},
		choices:  []int{0, 2, 3, 0}, // embed, template, done, text entry
		confirms: []bool{true},      // publish
	}
	b, out := newTestBuilder(p, nil, false)

	payload, err := b.Build(context.Background(), 1)
	require.NoError(t, err)

	desc := payload.Description
	assert.Contains(t, out.String(), "upgraded to https://example.com/chart.png")
	assert.NotContains(t, desc, "http://", "upgraded URL must not leak a plain scheme")

	intro := strings.Index(desc, "<p>intro</p>")
	img := strings.Index(desc, `<img src="https://example.com/chart.png"`)
	tmpl := strings.Index(desc, "docs.google.com/document/d/ABC123/copy")
	require.True(t, intro >= 0 && img >= 0 && tmpl >= 0, "all three parts must be present:\n%s", desc)
	assert.Less(t, intro, img, "free text before content fragments")
	assert.Less(t, img, tmpl, "content fragments before template links")

	assert.Equal(t, GradingPercent, payload.GradingType)
	assert.True(t, payload.Published)
}

func TestBuild_GenericEmbedAsksForSizing(t *testing.T) {
	p := &scriptPrompter{
		t: t,
		lines: []string{
			"HW", "",
			"https://x.edu/report.unknownext", // generic → sizing prompt
			"",                                // alt
			"640", "360",                      // custom dimensions
			"1", "", "", "", "",
		},
		choices:  []int{0, 2, 3, 0}, // embed, custom sizing, done, text entry
		confirms: []bool{false},
	}
	b, _ := newTestBuilder(p, nil, false)

	payload, err := b.Build(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, payload.Description, `width="640"`)
	assert.Contains(t, payload.Description, `height="360px"`)
}

func TestBuild_DryRunLocalImageUsesPlaceholder(t *testing.T) {
	p := &scriptPrompter{
		t:        t,
		lines:    []string{"HW", "", "pics/dog.png", "", "5", "", "", "", ""},
		choices:  []int{1, 3, 0},
		confirms: []bool{false},
	}
	b, out := newTestBuilder(p, nil, true)

	payload, err := b.Build(context.Background(), 9)
	require.NoError(t, err)

	assert.Contains(t, payload.Description, "pending-upload-")
	assert.Contains(t, payload.Description, `alt="dog.png"`)
	assert.Contains(t, out.String(), "[dry-run] would upload pics/dog.png")
}

// failingUploader rejects every slot request.
type failingUploader struct{ slotCalls int }

func (f *failingUploader) RequestUploadSlot(ctx context.Context, courseID int64, name string, size int64) (*canvas.UploadSlot, error) {
	f.slotCalls++
	return nil, &canvas.UploadError{Filename: name, Err: errors.New("quota exceeded")}
}

func (f *failingUploader) UploadToSlot(ctx context.Context, slot *canvas.UploadSlot, name string, r io.Reader) (*canvas.File, error) {
	return nil, errors.New("unreachable")
}

func TestBuild_FailedUploadSkipsFragmentAndContinues(t *testing.T) {
	img := filepath.Join(t.TempDir(), "dog.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0644))

	p := &scriptPrompter{
		t:        t,
		lines:    []string{"HW", "", img, "a dog", "5", "", "", "", ""},
		choices:  []int{1, 3, 0},
		confirms: []bool{false},
	}
	uploader := &failingUploader{}
	b, out := newTestBuilder(p, uploader, false)

	payload, err := b.Build(context.Background(), 9)
	require.NoError(t, err, "a failed upload must not abort the flow")

	assert.Equal(t, 1, uploader.slotCalls)
	assert.NotContains(t, payload.Description, "<img", "no fragment for a failed upload")
	assert.Contains(t, out.String(), "Upload failed")
	assert.Equal(t, 5.0, payload.PointsPossible, "collection continued past the failure")
}

func TestBuild_RejectsNonFinitePoints(t *testing.T) {
	p := &scriptPrompter{
		t: t,
		// ParseFloat accepts these spellings, so the loop has to reject them
		// itself: NaN, +Inf, -Inf, then a real value.
		lines:    []string{"HW", "", "NaN", "+Inf", "-Inf", "10", "", "", "", ""},
		choices:  []int{3, 0},
		confirms: []bool{false},
	}
	b, out := newTestBuilder(p, nil, false)

	payload, err := b.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 10.0, payload.PointsPossible)
	assert.Equal(t, 3, strings.Count(out.String(), "Points must be a non-negative number."))

	_, err = json.Marshal(payload)
	require.NoError(t, err, "built payload must always be serializable")
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-09-01 23:59")
	require.NoError(t, err)

	want := time.Date(2026, 9, 1, 23, 59, 0, 0, time.Local).UTC().Format(time.RFC3339)
	assert.Equal(t, want, got)

	got, err = ParseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local).UTC().Format(time.RFC3339), got)

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
	_, err = ParseDate("09/01/2026")
	assert.Error(t, err)
}

func TestPayload_JSONOmitsAbsentOptionalFields(t *testing.T) {
	payload := &Payload{
		Name:            "HW",
		PointsPossible:  10,
		GradingType:     GradingPoints,
		SubmissionTypes: []SubmissionType{SubmissionTextEntry},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	for _, absent := range []string{"due_at", "unlock_at", "lock_at", "assignment_group_id", "description"} {
		assert.NotContains(t, string(data), absent, "absent optional field must be omitted, not null")
	}
}

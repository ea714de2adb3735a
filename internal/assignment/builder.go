package assignment

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursecast/internal/canvas"
	"coursecast/internal/content"
	"coursecast/internal/prompt"
)

// Uploader is the slice of the gateway the builder needs for local images.
type Uploader interface {
	RequestUploadSlot(ctx context.Context, courseID int64, name string, size int64) (*canvas.UploadSlot, error)
	UploadToSlot(ctx context.Context, slot *canvas.UploadSlot, name string, r io.Reader) (*canvas.File, error)
}

// GroupLister fetches a course's assignment groups for the optional group
// selection.
type GroupLister interface {
	ListAssignmentGroups(ctx context.Context, courseID int64) ([]canvas.AssignmentGroup, error)
}

// Builder collects assignment fields through guided prompts. Invalid input
// is always recovered by re-prompting; Build fails only when the prompt
// source itself fails (EOF, closed terminal).
type Builder struct {
	prompt   prompt.Prompter
	uploader Uploader
	groups   GroupLister
	log      *zap.Logger
	out      io.Writer
	dryRun   bool
}

// NewBuilder wires the builder's collaborators. uploader and groups may be
// nil, which disables local-image upload and group selection respectively.
func NewBuilder(p prompt.Prompter, uploader Uploader, groups GroupLister, dryRun bool, out io.Writer, log *zap.Logger) *Builder {
	return &Builder{prompt: p, uploader: uploader, groups: groups, dryRun: dryRun, out: out, log: log}
}

// Build runs the full collection flow. firstCourseID anchors local-image
// uploads and the assignment-group listing; it is the first course of the
// operator's selection.
func (b *Builder) Build(ctx context.Context, firstCourseID int64) (*Payload, error) {
	p := &Payload{GradingType: GradingPoints}

	// Name: required, re-prompt until non-empty.
	for {
		name, err := b.prompt.Line("Assignment name")
		if err != nil {
			return nil, err
		}
		if name != "" {
			p.Name = name
			break
		}
		fmt.Fprintln(b.out, "A name is required.")
	}

	freeText, err := b.prompt.Line("Description text (optional)")
	if err != nil {
		return nil, err
	}

	contentFrags, templateFrags, err := b.collectContent(ctx, firstCourseID)
	if err != nil {
		return nil, err
	}

	// Assembly order is fixed: free text, then content fragments in the
	// order added, then template links in the order added.
	parts := make([]string, 0, 1+len(contentFrags)+len(templateFrags))
	if freeText != "" {
		parts = append(parts, "<p>"+freeText+"</p>")
	}
	parts = append(parts, contentFrags...)
	parts = append(parts, templateFrags...)
	p.Description = strings.Join(parts, "\n")

	if p.PointsPossible, err = b.collectPoints(); err != nil {
		return nil, err
	}
	if p.GradingType, err = b.collectGradingType(); err != nil {
		return nil, err
	}
	if p.SubmissionTypes, err = b.collectSubmissionTypes(); err != nil {
		return nil, err
	}

	if p.DueAt, err = b.collectDate("Due date"); err != nil {
		return nil, err
	}
	if p.UnlockAt, err = b.collectDate("Unlock date"); err != nil {
		return nil, err
	}
	if p.LockAt, err = b.collectDate("Lock date"); err != nil {
		return nil, err
	}

	if p.AssignmentGroupID, err = b.collectGroup(ctx, firstCourseID); err != nil {
		return nil, err
	}

	if p.Published, err = b.prompt.Confirm("Publish immediately", false); err != nil {
		return nil, err
	}

	b.log.Debug("assignment payload built",
		zap.String("name", p.Name),
		zap.Int("description_bytes", len(p.Description)))
	return p, nil
}

// content collection menu entries.
const (
	contentChoiceEmbed = iota
	contentChoiceImage
	contentChoiceTemplate
	contentChoiceDone
)

func (b *Builder) collectContent(ctx context.Context, courseID int64) (contentFrags, templateFrags []string, err error) {
	options := []string{
		"Embed content from a URL (video, slides, document, image...)",
		"Upload and embed a local image",
		"Add a \"make a copy\" template link",
		"Done adding content",
	}

	for {
		choice, err := b.prompt.Choose("Add content to the description?", options)
		if err != nil {
			return nil, nil, err
		}

		switch choice {
		case contentChoiceEmbed:
			frag, err := b.collectEmbed()
			if err != nil {
				return nil, nil, err
			}
			if frag != "" {
				contentFrags = append(contentFrags, frag)
			}

		case contentChoiceImage:
			frag, err := b.collectLocalImage(ctx, courseID)
			if err != nil {
				return nil, nil, err
			}
			if frag != "" {
				contentFrags = append(contentFrags, frag)
			}

		case contentChoiceTemplate:
			if len(templateFrags) >= content.MaxTemplateLinks {
				ok, err := b.prompt.Confirm(
					fmt.Sprintf("Already %d template links; add another anyway", len(templateFrags)), false)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					continue
				}
			}
			frag, err := b.collectTemplateLink()
			if err != nil {
				return nil, nil, err
			}
			if frag != "" {
				templateFrags = append(templateFrags, frag)
			}

		case contentChoiceDone:
			return contentFrags, templateFrags, nil
		}
	}
}

// collectEmbed asks for a URL, classifies it, and renders the fragment.
// An empty answer cancels the item.
func (b *Builder) collectEmbed() (string, error) {
	var item content.Item
	for {
		raw, err := b.prompt.Line("Content URL (blank to cancel)")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return "", nil
		}
		clean, upgraded, err := content.ValidateURL(raw)
		if err != nil {
			fmt.Fprintf(b.out, "Invalid URL: %v\n", err)
			continue
		}
		if upgraded {
			fmt.Fprintf(b.out, "Note: upgraded to %s\n", clean)
		}
		item.URL = clean
		break
	}

	item.Kind = content.Classify(item.URL)
	fmt.Fprintf(b.out, "Detected content type: %s\n", item.Kind)

	alt, err := b.prompt.Line("Alt/title text (optional)")
	if err != nil {
		return "", err
	}
	item.Alt = alt

	if content.NeedsSizing(item.Kind) {
		if item.Sizing, err = b.collectSizing(); err != nil {
			return "", err
		}
	}
	return content.Render(item), nil
}

func (b *Builder) collectSizing() (content.Sizing, error) {
	choice, err := b.prompt.Choose("Embed sizing", []string{
		"Standard (fixed box)",
		"Responsive 16:9",
		"Custom width and height",
	})
	if err != nil {
		return content.Sizing{}, err
	}

	switch choice {
	case 1:
		return content.Sizing{Mode: content.SizingResponsive16x9}, nil
	case 2:
		width, err := b.prompt.Line("Width (e.g. 640 or 100%)")
		if err != nil {
			return content.Sizing{}, err
		}
		height, err := b.prompt.Line("Height (e.g. 360)")
		if err != nil {
			return content.Sizing{}, err
		}
		return content.Sizing{Mode: content.SizingCustom, Width: width, Height: height}, nil
	default:
		return content.Sizing{Mode: content.SizingStandard}, nil
	}
}

// collectLocalImage runs the two-phase upload sub-flow. A failed upload is
// reported and skipped; it never aborts the rest of collection. In dry-run
// mode no upload happens and the fragment carries a placeholder token in
// place of the unknown remote file id.
func (b *Builder) collectLocalImage(ctx context.Context, courseID int64) (string, error) {
	path, err := b.prompt.Line("Local image path (blank to cancel)")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", nil
	}

	alt, err := b.prompt.Line("Alt text (optional)")
	if err != nil {
		return "", err
	}
	if alt == "" {
		alt = filepath.Base(path)
	}

	if b.dryRun {
		token := "pending-upload-" + uuid.NewString()
		fmt.Fprintf(b.out, "[dry-run] would upload %s\n", path)
		return content.Render(content.Item{
			Kind:      content.KindImage,
			URL:       fmt.Sprintf("/courses/%d/files/%s/preview", courseID, token),
			LocalPath: path,
			Alt:       alt,
		}), nil
	}

	if b.uploader == nil {
		fmt.Fprintln(b.out, "Local image upload is not available; skipping.")
		return "", nil
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(b.out, "Cannot read %s: %v; skipping this image.\n", path, err)
		return "", nil
	}

	name := filepath.Base(path)
	slot, err := b.uploader.RequestUploadSlot(ctx, courseID, name, info.Size())
	if err != nil {
		fmt.Fprintf(b.out, "Upload failed: %v; skipping this image.\n", err)
		b.log.Warn("upload slot request failed", zap.String("file", name), zap.Error(err))
		return "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(b.out, "Cannot open %s: %v; skipping this image.\n", path, err)
		return "", nil
	}
	defer f.Close()

	uploaded, err := b.uploader.UploadToSlot(ctx, slot, name, f)
	if err != nil {
		fmt.Fprintf(b.out, "Upload failed: %v; skipping this image.\n", err)
		b.log.Warn("upload transfer failed", zap.String("file", name), zap.Error(err))
		return "", nil
	}

	fmt.Fprintf(b.out, "Uploaded %s (file id %d)\n", name, uploaded.ID)
	return content.Render(content.Item{
		Kind:      content.KindImage,
		URL:       canvas.FilePreviewURL(courseID, uploaded.ID),
		LocalPath: path,
		Alt:       alt,
	}), nil
}

// collectTemplateLink asks for a shared document URL and wraps it in the
// copy-link block, re-prompting while the URL is invalid.
func (b *Builder) collectTemplateLink() (string, error) {
	for {
		raw, err := b.prompt.Line("Shared Google Docs/Sheets/Slides URL (blank to cancel)")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return "", nil
		}

		name, err := b.prompt.Line("Template name")
		if err != nil {
			return "", err
		}
		desc, err := b.prompt.Line("Template description (optional)")
		if err != nil {
			return "", err
		}

		link, err := content.BuildTemplateLink(raw, name, desc)
		if err != nil {
			fmt.Fprintf(b.out, "Invalid template URL: %v\n", err)
			continue
		}
		return link.Render(), nil
	}
}

func (b *Builder) collectPoints() (float64, error) {
	for {
		raw, err := b.prompt.Line("Points possible")
		if err != nil {
			return 0, err
		}
		pts, perr := strconv.ParseFloat(raw, 64)
		// ParseFloat accepts "NaN" and "Inf", neither of which can be
		// serialized into the payload.
		if perr != nil || pts < 0 || math.IsNaN(pts) || math.IsInf(pts, 0) {
			fmt.Fprintln(b.out, "Points must be a non-negative number.")
			continue
		}
		return pts, nil
	}
}

func (b *Builder) collectGradingType() (GradingType, error) {
	options := []GradingType{GradingPoints, GradingPercent, GradingLetter, GradingPassFail}
	for {
		raw, err := b.prompt.Line("Grading type (1=points 2=percent 3=letter_grade 4=pass_fail) [1]")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return GradingPoints, nil
		}
		if n, perr := strconv.Atoi(raw); perr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		fmt.Fprintln(b.out, "Enter a number between 1 and 4, or leave blank for points.")
	}
}

func (b *Builder) collectSubmissionTypes() ([]SubmissionType, error) {
	labels := make([]string, len(submissionChoices))
	for i, c := range submissionChoices {
		labels[i] = c.Label
	}
	choice, err := b.prompt.Choose("Submission type", labels)
	if err != nil {
		return nil, err
	}
	// Copy so the payload never aliases the package-level table.
	types := make([]SubmissionType, len(submissionChoices[choice].Types))
	copy(types, submissionChoices[choice].Types)
	return types, nil
}

// collectDate asks for one optional date. Empty skips the field entirely;
// invalid input re-prompts.
func (b *Builder) collectDate(label string) (string, error) {
	for {
		raw, err := b.prompt.Line(label + " (optional, e.g. 2026-09-01 23:59)")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return "", nil
		}
		normalized, perr := ParseDate(raw)
		if perr != nil {
			fmt.Fprintf(b.out, "%v\n", perr)
			continue
		}
		return normalized, nil
	}
}

// collectGroup offers the first selected course's assignment groups. Any
// fetch failure just skips the group field; it is optional.
func (b *Builder) collectGroup(ctx context.Context, courseID int64) (int64, error) {
	if b.groups == nil || b.dryRun {
		return 0, nil
	}

	groups, err := b.groups.ListAssignmentGroups(ctx, courseID)
	if err != nil {
		fmt.Fprintf(b.out, "Could not fetch assignment groups: %v (skipping)\n", err)
		b.log.Warn("assignment group fetch failed", zap.Int64("course_id", courseID), zap.Error(err))
		return 0, nil
	}
	if len(groups) == 0 {
		return 0, nil
	}

	labels := make([]string, 0, len(groups)+1)
	labels = append(labels, "(no group)")
	for _, g := range groups {
		labels = append(labels, g.Name)
	}
	choice, err := b.prompt.Choose("Assignment group", labels)
	if err != nil {
		return 0, err
	}
	if choice == 0 {
		return 0, nil
	}
	return groups[choice-1].ID, nil
}

// Package content turns operator-supplied URLs into the HTML fragments that
// make up an assignment description: video/slide/document/image embeds and
// "make a copy" template links. Classification and rendering are pure
// functions; nothing here touches the network.
package content

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Kind classifies what a URL points at, which decides the fragment shape.
type Kind int

const (
	KindGeneric   Kind = iota // opaque iframe
	KindVideo                 // hosted video (YouTube)
	KindVideoFile             // direct video file (mp4, mov, ...)
	KindSlideDeck             // Google Slides deck
	KindOfficeDoc             // Office formats via the remote viewer
	KindDocument              // PDF
	KindImage                 // raster/vector image
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindVideoFile:
		return "video file"
	case KindSlideDeck:
		return "slide deck"
	case KindOfficeDoc:
		return "office document"
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	default:
		return "generic"
	}
}

// SizingMode selects one of the three embed sizing strategies.
type SizingMode int

const (
	SizingStandard      SizingMode = iota // fixed box with explicit height
	SizingResponsive16x9                  // padding trick, keeps 16:9 at any width
	SizingCustom                          // operator-specified width/height
)

// Sizing carries the mode plus dimensions for SizingCustom.
type Sizing struct {
	Mode   SizingMode
	Width  string
	Height string
}

// Item is one embeddable content reference. Transient: it is rendered into
// the description string during collection and never persisted.
type Item struct {
	Kind      Kind
	URL       string // validated remote URL, or a Canvas-relative preview path
	LocalPath string // set only for local images before upload
	Alt       string
	Sizing    Sizing
}

var urlPattern = regexp.MustCompile(`^https?://\S+$`)

// ValidateURL checks a user-supplied URL against the accepted shape and
// transparently upgrades http to https. The second return reports whether an
// upgrade happened so the caller can tell the operator.
func ValidateURL(raw string) (clean string, upgraded bool, err error) {
	raw = strings.TrimSpace(raw)
	if !urlPattern.MatchString(raw) {
		return "", false, fmt.Errorf("not a valid http(s) URL: %q", raw)
	}
	if strings.HasPrefix(strings.ToLower(raw), "http://") {
		return "https://" + raw[len("http://"):], true, nil
	}
	return raw, false, nil
}

var (
	slideDeckPattern = regexp.MustCompile(`(?i)^https://docs\.google\.com/presentation/`)
	// Anchored to the host so a youtube.com substring elsewhere in the URL
	// (path, query) does not classify as hosted video.
	youtubePattern = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)*(youtube\.com|youtu\.be)/`)
)

// extension sets for classification. Order of checks in Classify matters;
// first match wins.
var (
	slideExtensions = map[string]bool{".ppt": true, ".pptx": true}
	videoExtensions = map[string]bool{".mov": true, ".mp4": true, ".avi": true, ".webm": true, ".mkv": true}
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true}
	officeExtensions = map[string]bool{".doc": true, ".docx": true, ".xls": true, ".xlsx": true}
)

// Classify maps a URL onto a Kind. Deterministic and total: anything
// unrecognized is KindGeneric.
func Classify(rawURL string) Kind {
	lower := strings.ToLower(rawURL)

	if youtubePattern.MatchString(lower) {
		return KindVideo
	}
	if slideDeckPattern.MatchString(rawURL) {
		return KindSlideDeck
	}

	ext := urlExtension(lower)
	switch {
	case slideExtensions[ext]:
		return KindOfficeDoc
	case videoExtensions[ext]:
		return KindVideoFile
	case ext == ".pdf":
		return KindDocument
	case imageExtensions[ext]:
		return KindImage
	case officeExtensions[ext]:
		return KindOfficeDoc
	}
	return KindGeneric
}

// urlExtension extracts the file extension from a URL path, ignoring any
// query string or fragment.
func urlExtension(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.ToLower(path.Ext(u.Path))
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.ToLower(path.Ext(rawURL))
}

// NeedsSizing reports whether the operator should be asked for a sizing
// strategy. Only video files and generic iframes have no single sensible
// default; every other kind renders a fixed or responsive default.
func NeedsSizing(k Kind) bool {
	return k == KindVideoFile || k == KindGeneric
}

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube\.com/watch\?.*v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`(?i)youtu\.be/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`(?i)youtube\.com/embed/([A-Za-z0-9_-]{6,})`),
}

// YouTubeEmbedURL normalizes any of the common YouTube URL shapes into the
// canonical embed URL. When no video id is extractable it falls back to the
// original URL unchanged.
func YouTubeEmbedURL(rawURL string) string {
	for _, p := range youtubeIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return "https://www.youtube.com/embed/" + m[1]
		}
	}
	return rawURL
}

// slidesEmbedURL rewrites a Google Slides URL to its native embed form.
func slidesEmbedURL(rawURL string) string {
	if i := strings.Index(rawURL, "/edit"); i >= 0 {
		rawURL = rawURL[:i]
	}
	if i := strings.Index(rawURL, "/pub"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimSuffix(rawURL, "/") + "/embed?start=false&loop=false&delayms=3000"
}

// officeViewerURL wraps an Office-format document URL in the public Office
// web viewer endpoint.
func officeViewerURL(rawURL string) string {
	return "https://view.officeapps.live.com/op/embed.aspx?src=" + url.QueryEscape(rawURL)
}

// Render produces the HTML fragment for one item. The switch is exhaustive
// over Kind; the item's URL must already be validated.
func Render(item Item) string {
	alt := item.Alt
	if alt == "" {
		alt = defaultAlt(item)
	}
	title := html.EscapeString(alt)

	switch item.Kind {
	case KindVideo:
		return responsive16x9Iframe(YouTubeEmbedURL(item.URL), title)

	case KindVideoFile, KindGeneric:
		return sizedIframe(item.URL, title, item.Sizing)

	case KindSlideDeck:
		return responsive3x2Iframe(slidesEmbedURL(item.URL), title)

	case KindOfficeDoc:
		return responsive3x2Iframe(officeViewerURL(item.URL), title)

	case KindDocument:
		return fmt.Sprintf(
			`<iframe src="%s" title="%s" style="width: 100%%; height: 600px; border: none;"></iframe>`,
			html.EscapeString(item.URL), title)

	case KindImage:
		return fmt.Sprintf(
			`<img src="%s" alt="%s" style="max-width: 100%%; height: auto;">`,
			html.EscapeString(item.URL), title)
	}
	// Unreachable as long as the switch covers every Kind.
	return sizedIframe(item.URL, title, item.Sizing)
}

// defaultAlt substitutes kind-appropriate text when no alt was supplied.
func defaultAlt(item Item) string {
	if item.LocalPath != "" {
		return path.Base(strings.ReplaceAll(item.LocalPath, "\\", "/"))
	}
	if u, err := url.Parse(item.URL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		return path.Base(u.Path)
	}
	return "Embedded " + item.Kind.String()
}

// sizedIframe renders one of the three sizing strategies. src is escaped in
// the attribute position so a quote in the URL cannot break out of it.
func sizedIframe(src, title string, sizing Sizing) string {
	switch sizing.Mode {
	case SizingResponsive16x9:
		return responsive16x9Iframe(src, title)

	case SizingCustom:
		return fmt.Sprintf(
			`<iframe src="%s" title="%s" width="%s" height="%s" style="border: none;" allowfullscreen></iframe>`,
			html.EscapeString(src), title, sizing.Width, EnsureUnit(sizing.Height))

	default: // SizingStandard: fixed square box with explicit height
		return fmt.Sprintf(
			`<iframe src="%s" title="%s" width="480" height="480" style="border: none;" allowfullscreen></iframe>`,
			html.EscapeString(src), title)
	}
}

func responsive16x9Iframe(src, title string) string {
	src = html.EscapeString(src)
	return fmt.Sprintf(
		`<div style="position: relative; padding-bottom: 56.25%%; height: 0; overflow: hidden; max-width: 100%%;">`+
			`<iframe src="%s" title="%s" style="position: absolute; top: 0; left: 0; width: 100%%; height: 100%%; border: none;" allowfullscreen></iframe>`+
			`</div>`,
		src, title)
}

// responsive3x2Iframe is the 3:2 container used for slide decks and office
// documents (66.67% padding).
func responsive3x2Iframe(src, title string) string {
	src = html.EscapeString(src)
	return fmt.Sprintf(
		`<div style="position: relative; padding-bottom: 66.67%%; height: 0; overflow: hidden; max-width: 100%%;">`+
			`<iframe src="%s" title="%s" style="position: absolute; top: 0; left: 0; width: 100%%; height: 100%%; border: none;" allowfullscreen></iframe>`+
			`</div>`,
		src, title)
}

var numericPattern = regexp.MustCompile(`^\d+$`)

// EnsureUnit suffixes a bare numeric dimension with px; values that already
// carry a unit (px, %, em, ...) pass through unchanged.
func EnsureUnit(dim string) string {
	dim = strings.TrimSpace(dim)
	if numericPattern.MatchString(dim) {
		return dim + "px"
	}
	return dim
}

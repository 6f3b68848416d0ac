// Package segment provides the Segment domain entity and the segmenter that
// splits demo source into prose and code runs.
package segment

// Kind represents the classification of a segment.
type Kind int

const (
	KindProse Kind = iota // Markdown prose (from "# " comment lines)
	KindCode              // Executable code
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindProse:
		return "prose"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

const (
	// ProsePrefix marks a source line as prose.
	ProsePrefix = "# "
	// CommentedDirectivePrefix marks a directive hidden behind a comment.
	CommentedDirectivePrefix = "#%"
	// DirectiveMarker starts a code unit that must stay first in its cell
	// (a cell magic such as "%%time").
	DirectiveMarker = "%%"
)

// Segment represents one classified, contiguous run of source lines.
type Segment struct {
	Kind Kind   // Prose or code
	Text string // Lines joined with "\n", prose prefix stripped
}

// Prose returns a prose segment.
func Prose(text string) Segment {
	return Segment{Kind: KindProse, Text: text}
}

// Code returns a code segment.
func Code(text string) Segment {
	return Segment{Kind: KindCode, Text: text}
}

// IsProse reports whether the segment is prose.
func (s Segment) IsProse() bool {
	return s.Kind == KindProse
}

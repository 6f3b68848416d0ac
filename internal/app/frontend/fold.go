package frontend

import (
	"strings"

	"github.com/osa030/demobox/internal/domain/segment"
)

// FoldProse turns raw segments into presentable units.
//
// Each prose segment is commented out and prepended to the code segment that
// follows it, so the explanation travels with the code. When that code starts
// with a cell directive, the prose is kept as a standalone unit right before
// it instead, because the directive has to be the first line of its cell.
// Trailing prose becomes its own unit.
func FoldProse(segments []segment.Segment) []segment.Segment {
	units := make([]segment.Segment, 0, len(segments))

	var (
		pending    string
		hasPending bool
	)
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)

		switch s.Kind {
		case segment.KindProse:
			if hasPending {
				units = append(units, segment.Prose(pending))
			}
			pending, hasPending = text, true

		case segment.KindCode:
			if hasPending {
				switch {
				case strings.HasPrefix(text, segment.DirectiveMarker):
					units = append(units, segment.Prose(pending))
				case text == "":
					text = commentOut(pending)
				default:
					text = commentOut(pending) + "\n" + text
				}
				hasPending = false
			} else if text == "" {
				continue
			}
			units = append(units, segment.Code(text))
		}
	}
	if hasPending {
		units = append(units, segment.Prose(pending))
	}

	return units
}

func commentOut(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = segment.ProsePrefix + line
	}
	return strings.Join(lines, "\n")
}

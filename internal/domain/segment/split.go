package segment

import "strings"

// Split turns raw demo source into an ordered sequence of segments.
//
// The source is dedented, commented directives ("#%...") are made live,
// lines starting with "# " become prose and every other line code. Runs of
// lines with the same classification are merged into one segment.
// Split never fails; an empty source yields no segments.
func Split(source string) []Segment {
	if source == "" {
		return nil
	}

	lines := strings.Split(Dedent(source), "\n")

	type classified struct {
		kind Kind
		line string
		end  bool
	}

	items := make([]classified, 0, len(lines)+1)
	for _, line := range lines {
		if strings.HasPrefix(line, CommentedDirectivePrefix) {
			line = line[1:]
		}
		if rest, ok := strings.CutPrefix(line, ProsePrefix); ok {
			items = append(items, classified{kind: KindProse, line: rest})
			continue
		}
		items = append(items, classified{kind: KindCode, line: line})
	}
	// Sentinel so the last run is flushed.
	items = append(items, classified{end: true})

	var (
		segments []Segment
		buffer   []string
		current  Kind
	)
	for _, item := range items {
		if len(buffer) > 0 && (item.end || item.kind != current) {
			segments = append(segments, Segment{
				Kind: current,
				Text: strings.Join(buffer, "\n"),
			})
			buffer = buffer[:0]
		}
		if item.end {
			break
		}
		current = item.kind
		buffer = append(buffer, item.line)
	}

	return segments
}

// Join reassembles segments into source text, re-adding the prose prefix.
// Join(Split(s)) is line-equivalent to Dedent(s) with live directives.
func Join(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Kind == KindProse {
			for _, line := range strings.Split(s.Text, "\n") {
				lines = append(lines, ProsePrefix+line)
			}
			continue
		}
		lines = append(lines, s.Text)
	}
	return strings.Join(lines, "\n")
}

package format

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```([\\w+#-]*)\\n([\\s\\S]*?)```")

// Segment is a piece of content: prose or a fenced code block
type Segment struct {
	Code bool
	Lang string
	Body string
}

// SplitFences splits content into prose and fenced code segments.
// Code bodies lose their trailing newline; unterminated fences stay prose.
func SplitFences(content string) []Segment {
	var segs []Segment
	last := 0
	for _, m := range fencePattern.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			segs = append(segs, Segment{Body: content[last:m[0]]})
		}
		segs = append(segs, Segment{
			Code: true,
			Lang: content[m[2]:m[3]],
			Body: strings.TrimSuffix(content[m[4]:m[5]], "\n"),
		})
		last = m[1]
	}
	if last < len(content) {
		segs = append(segs, Segment{Body: content[last:]})
	}
	return segs
}

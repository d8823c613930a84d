// Package preview renders the read-only view of a text card. The raw text is
// kept verbatim (escaped) and decorated with <mark> spans for emphasis,
// headers, code and [[link]] tokens, so the preview lines up character for
// character with the editable text underneath it.
package preview

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/leth4/leto-sub000/internal/domain"
)

// Mark classes emitted in the preview HTML.
const (
	ClassSyntax     = "hashtag"
	ClassItalic     = "italic"
	ClassBold       = "bold"
	ClassHeader     = "header"
	ClassInlineCode = "inline-code"
	ClassCodeBlock  = "code"
	ClassLink       = "link"
	ClassMisspelled = "misspelled"

	maxHeaderLevel = 4
)

var linkPattern = regexp.MustCompile(`\[\[([^\[\]\n]+)\]\]`)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// span is one decorated byte range of the source.
type span struct {
	start, end int
	class      string
}

// Renderer implements domain.PreviewRenderer on top of the goldmark parser.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{md: goldmark.New()}
}

// Render decorates raw and reports the code ranges that spellchecking must
// skip, plus the targets of every [[link]] outside code.
func (r *Renderer) Render(raw string) domain.Preview {
	src := displayText(raw)
	spans, excluded := r.scan([]byte(src))

	var links []string
	for _, m := range linkPattern.FindAllStringSubmatchIndex(src, -1) {
		if inAny(excluded, m[0]) || crossesAny(spans, m[0], m[1]) {
			continue
		}
		spans = append(spans, span{m[0], m[1], ClassLink})
		links = append(links, strings.TrimSpace(src[m[2]:m[3]]))
	}

	return domain.Preview{
		HTML:     decorate(src, spans),
		Excluded: excluded,
		Links:    links,
	}
}

// displayText pads a trailing newline so the last empty line keeps its height.
func displayText(raw string) string {
	if strings.HasSuffix(raw, "\n") {
		return raw + " "
	}
	return raw
}

func (r *Renderer) scan(src []byte) ([]span, []domain.Range) {
	doc := r.md.Parser().Parse(text.NewReader(src))

	var spans []span
	var excluded []domain.Range

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			spans = append(spans, headingSpans(src, node)...)
		case *ast.Emphasis:
			spans = append(spans, emphasisSpans(src, node)...)
		case *ast.CodeSpan:
			if start, end, ok := codeSpanBounds(src, node); ok {
				spans = append(spans, span{start, end, ClassInlineCode})
				excluded = append(excluded, domain.Range{Start: start, End: end})
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if start, end, ok := fencedBounds(src, node); ok {
				spans = append(spans, span{start, end, ClassCodeBlock})
				excluded = append(excluded, domain.Range{Start: start, End: end})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(excluded, func(i, j int) bool { return excluded[i].Start < excluded[j].Start })
	return spans, excluded
}

func headingSpans(src []byte, h *ast.Heading) []span {
	if h.Level > maxHeaderLevel || h.Lines().Len() == 0 {
		return nil
	}
	first := h.Lines().At(0)
	lineStart := lineStartOf(src, first.Start)
	i := lineStart
	for i < len(src) && src[i] == ' ' {
		i++
	}
	hashStart := i
	for i < len(src) && src[i] == '#' {
		i++
	}
	if i == hashStart {
		return nil // setext heading
	}
	last := h.Lines().At(h.Lines().Len() - 1)
	end := lineEndOf(src, last.Stop)
	return []span{
		{hashStart, i, ClassSyntax},
		{i, end, ClassHeader},
	}
}

func emphasisSpans(src []byte, e *ast.Emphasis) []span {
	start, end, ok := textBounds(src, e)
	if !ok || start-e.Level < 0 || end+e.Level > len(src) {
		return nil
	}
	class := ClassItalic
	if e.Level >= 2 {
		class = ClassBold
	}
	return []span{
		{start - e.Level, start, ClassSyntax},
		{start, end, class},
		{end, end + e.Level, ClassSyntax},
	}
}

func codeSpanBounds(src []byte, c *ast.CodeSpan) (int, int, bool) {
	start, end, ok := textBounds(src, c)
	if !ok {
		return 0, 0, false
	}
	for start > 0 && src[start-1] == '`' {
		start--
	}
	for end < len(src) && src[end] == '`' {
		end++
	}
	return start, end, true
}

func fencedBounds(src []byte, f *ast.FencedCodeBlock) (int, int, bool) {
	var anchor int
	switch {
	case f.Info != nil:
		anchor = f.Info.Segment.Start
	case f.Lines().Len() > 0:
		anchor = lineStartOf(src, f.Lines().At(0).Start) - 1
	default:
		return 0, 0, false
	}
	if anchor < 0 {
		return 0, 0, false
	}
	start := lineStartOf(src, anchor)

	// The closing fence is the first fence line after the last content line.
	from := lineEndOf(src, anchor)
	if n := f.Lines().Len(); n > 0 {
		from = f.Lines().At(n - 1).Stop
	}
	end := len(src)
	for pos := from; pos < len(src); {
		ls := lineStartOf(src, pos)
		le := lineEndOf(src, pos)
		if ls > start && strings.HasPrefix(strings.TrimLeft(string(src[ls:le]), " "), "```") {
			end = le
			break
		}
		pos = le + 1
	}
	return start, end, true
}

// textBounds returns the extent of all text below n. Nested code spans count
// with their backticks so that enclosing marks never cut through them.
func textBounds(src []byte, n ast.Node) (int, int, bool) {
	start, end := -1, -1
	extend := func(s, e int) {
		if start < 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.CodeSpan:
			if c != n {
				if s, e, ok := codeSpanBounds(src, node); ok {
					extend(s, e)
				}
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			extend(node.Segment.Start, node.Segment.Stop)
		}
		return ast.WalkContinue, nil
	})
	return start, end, start >= 0
}

func lineStartOf(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEndOf(src []byte, pos int) int {
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	return pos
}

func inAny(ranges []domain.Range, i int) bool {
	for _, r := range ranges {
		if r.Contains(i) {
			return true
		}
	}
	return false
}

// crossesAny reports whether [start, end) partially overlaps one of spans,
// which would break the nesting of the generated marks.
func crossesAny(spans []span, start, end int) bool {
	for _, s := range spans {
		inside := s.start >= start && s.end <= end
		outside := s.start <= start && s.end >= end
		disjoint := s.end <= start || s.start >= end
		if !inside && !outside && !disjoint {
			return true
		}
	}
	return false
}

// decorate escapes src and wraps every span in a <mark>. Spans must nest.
func decorate(src string, spans []span) string {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var b strings.Builder
	var open []span
	pos := 0
	flush := func(to int) {
		if to > pos {
			b.WriteString(escaper.Replace(src[pos:to]))
			pos = to
		}
	}
	closeUntil := func(at int) {
		for len(open) > 0 && open[len(open)-1].end <= at {
			top := open[len(open)-1]
			flush(top.end)
			b.WriteString("</mark>")
			open = open[:len(open)-1]
		}
	}

	for _, s := range spans {
		if s.end <= s.start {
			continue
		}
		closeUntil(s.start)
		flush(s.start)
		b.WriteString("<mark class='" + s.class + "'>")
		open = append(open, s)
	}
	closeUntil(len(src))
	flush(len(src))
	return b.String()
}

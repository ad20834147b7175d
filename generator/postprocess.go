package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FallbackMessage is what callers see when model output is rejected.
const FallbackMessage = "Something went wrong"

// ErrRejected matches every RejectionError via errors.Is.
var ErrRejected = errors.New("model output rejected")

// RejectionError explains why model output was not publishable.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return "model output rejected: " + e.Reason
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

func reject(format string, args ...any) error {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

const fence = "```"

var mdParser = goldmark.New().Parser()

// StripFence removes an optional code fence wrapped around the whole text.
// A document made of a single fenced block is unwrapped through the markdown
// parser; inline fences such as "```json{...}```" are trimmed literally, and
// a leading or trailing fence alone is dropped. Use it for JSON payloads only.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) && !strings.HasSuffix(s, fence) {
		return s
	}
	if body, ok := unwrapFencedBlock(s); ok {
		return body
	}

	s = trimOpeningFence(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// stripWrappingFence is StripFence for prose. The text is only unwrapped
// when it opens with a fence, and a closing fence is only removed together
// with that opening one, so replies that end in their own code block keep it.
func stripWrappingFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	if body, ok := unwrapFencedBlock(s); ok {
		return body
	}

	rest := trimOpeningFence(s)
	switch {
	case strings.HasSuffix(rest, fence):
		rest = strings.TrimSuffix(rest, fence)
	case strings.Contains(rest, fence):
		// The opening fence is closed inside the text.
		return s
	}
	return strings.TrimSpace(rest)
}

// unwrapFencedBlock returns the body of s when s is exactly one fenced block.
func unwrapFencedBlock(s string) (string, bool) {
	src := []byte(s)
	doc := mdParser.Parse(text.NewReader(src))
	if doc.ChildCount() != 1 {
		return "", false
	}
	block, ok := doc.FirstChild().(*ast.FencedCodeBlock)
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String()), true
}

// trimOpeningFence drops a leading "```" together with its info string when
// the fence sits on its own line, or just "```json" and "```" otherwise.
func trimOpeningFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[len(fence):nl], "`{[\"") {
		return s[nl+1:]
	}
	s = strings.TrimPrefix(s, fence+"json")
	return strings.TrimPrefix(s, fence)
}

// ParseBlogContent decodes the blog JSON envelope. Every field must be
// present and non-blank, otherwise the whole output is rejected.
func ParseBlogContent(raw string) (GeneratedContent, error) {
	body := StripFence(raw)
	if body == "" {
		return GeneratedContent{}, reject("empty response")
	}

	var c GeneratedContent
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return GeneratedContent{}, reject("invalid json: %v", err)
	}

	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"title", c.Title},
		{"brief", c.Brief},
		{"content", c.Content},
		{"image", c.Image},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return GeneratedContent{}, reject("missing fields: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// ParsePlainText returns the model text without any fences it added.
func ParsePlainText(raw string) (string, error) {
	s := stripWrappingFence(raw)
	if s == "" {
		return "", reject("empty response")
	}
	return s, nil
}

// PlainText flattens markdown into plain text: emphasis, links and headings
// keep their text, block elements become lines.
func PlainText(md string) string {
	src := []byte(md)
	doc := mdParser.Parse(text.NewReader(src))

	var lines []string
	var cur strings.Builder
	flush := func() {
		if line := strings.TrimSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				cur.Write(node.Segment.Value(src))
				switch {
				case node.HardLineBreak():
					flush()
				case node.SoftLineBreak():
					cur.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				cur.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				cur.Write(node.Label(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				flush()
				block := n.Lines()
				for i := 0; i < block.Len(); i++ {
					seg := block.At(i)
					cur.Write(bytes.TrimRight(seg.Value(src), "\n"))
					flush()
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if !entering {
				flush()
			}
		}
		return ast.WalkContinue, nil
	})
	flush()
	return strings.Join(lines, "\n")
}

// truncateWords keeps at most n whitespace separated words.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

package publish

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ppiankov/answermirror/internal/model"
)

// DefaultExcerptChars is the excerpt length used when none is configured
const DefaultExcerptChars = 200

var markdown = goldmark.New()

// DestinationBody links the destination post back to the source thread
func DestinationBody(post model.SourcePost) string {
	link := post.ShortLink
	if link == "" {
		link = "https://redd.it/" + post.ID
	}
	return fmt.Sprintf("[ORIGINAL THREAD](%s)", link)
}

// AnswerBody renders the comment announcing one answer. The author is not
// mentioned with /u/ so they are not notified.
func AnswerBody(answer model.Comment, excerptChars int) string {
	author := answer.Author
	if author == "" {
		author = "[deleted]"
	}
	excerpt := Excerpt(answer.Body, excerptChars)
	return fmt.Sprintf("[%s replies:](%s)\n\n> %s...", author, answer.Permalink, excerpt)
}

// Excerpt returns the first n characters of the plain text of a markdown body,
// with paragraph breaks continuing the quote block.
func Excerpt(body string, n int) string {
	plain := PlainText(body)
	plain = truncate(plain, n)
	return strings.ReplaceAll(plain, "\n\n", "\n\n>")
}

// PlainText strips markdown formatting, keeping one blank line between blocks
func PlainText(body string) string {
	src := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	blockBreak := func() {
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			blockBreak()
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			blockBreak()
			writeLines(&buf, node, src)
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.HardLineBreak() {
				buf.WriteByte('\n')
			} else if node.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.URL(src))
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}

func writeLines(buf *bytes.Buffer, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	trimmed := bytes.TrimRight(buf.Bytes(), "\n")
	buf.Truncate(len(trimmed))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

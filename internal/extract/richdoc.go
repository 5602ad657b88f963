package extract

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

// extractRichDocument handles DOCX and HTML inputs. DOCX bytes go through
// the converter first; HTML is parsed directly.
func (s *Service) extractRichDocument(filename string, data []byte) ([]chunk.Chunk, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	htmlData := data
	if ext == ".docx" || (ext != ".html" && ext != ".htm" && looksLikeZip(data)) {
		if s.converter == nil {
			return nil, chunk.NewError(chunk.ErrConverterNotReady,
				"document converter is not available", nil)
		}
		converted, err := s.converter.Convert(data)
		if err != nil {
			return nil, chunk.NewErrorWithDetails(chunk.ErrExtractFailed,
				"failed to extract document structure",
				"file may be corrupted or password protected", err)
		}
		htmlData = converted
	}

	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return nil, chunk.NewErrorWithDetails(chunk.ErrExtractFailed,
			"failed to extract document structure",
			"file may be corrupted or password protected", err)
	}

	var chunks []chunk.Chunk
	walkRichNodes(doc, &chunks)
	return assignIDs(chunks), nil
}

// looksLikeZip reports whether data starts with the ZIP magic bytes, which
// is how DOCX uploads without a proper extension are recognized.
func looksLikeZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K'
}

// walkRichNodes walks the DOM depth-first, emitting chunks for the node
// kinds the model understands and recursing into everything else.
func walkRichNodes(n *html.Node, chunks *[]chunk.Chunk) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head:
			return

		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			text := collectText(n)
			if text == "" {
				return
			}
			level := int(n.Data[1] - '0')
			style := &chunk.Style{HeadingLevel: level, Bold: true}
			style.Underline = hasEmphasis(n, atom.U)
			*chunks = append(*chunks, chunk.Chunk{
				Kind:         chunk.KindHeading,
				OriginalText: text,
				Style:        style,
			})
			return

		case atom.P, atom.Li:
			text := collectText(n)
			if text == "" {
				*chunks = append(*chunks, chunk.Chunk{Kind: chunk.KindEmptyLine})
				return
			}
			if checked, ok := chunk.DetectCheckbox(text); ok {
				*chunks = append(*chunks, chunk.Chunk{
					Kind:         chunk.KindCheckbox,
					OriginalText: text,
					Style:        &chunk.Style{Checked: checked},
				})
				return
			}
			style := paragraphStyle(n)
			*chunks = append(*chunks, chunk.Chunk{
				Kind:         chunk.KindParagraph,
				OriginalText: text,
				Style:        style,
			})
			return

		case atom.Table:
			emitTableCells(n, chunks)
			return

		case atom.Br:
			*chunks = append(*chunks, chunk.Chunk{Kind: chunk.KindEmptyLine})
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkRichNodes(c, chunks)
	}
}

// paragraphStyle builds the style bag for a paragraph node, or nil when no
// attribute applies.
func paragraphStyle(n *html.Node) *chunk.Style {
	style := chunk.Style{
		Bold:      hasEmphasis(n, atom.B) || hasEmphasis(n, atom.Strong),
		Italic:    hasEmphasis(n, atom.I) || hasEmphasis(n, atom.Em),
		Underline: hasEmphasis(n, atom.U),
		Alignment: nodeAlignment(n),
	}
	if style == (chunk.Style{}) {
		return nil
	}
	return &style
}

// emitTableCells walks a table and emits one table-cell chunk per td/th,
// tracking row and column positions.
func emitTableCells(table *html.Node, chunks *[]chunk.Chunk) {
	row := 0
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			col := 0
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode {
					continue
				}
				if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
					continue
				}
				style := &chunk.Style{
					TableRow:  row,
					TableCol:  col,
					Bold:      c.DataAtom == atom.Th || hasEmphasis(c, atom.B) || hasEmphasis(c, atom.Strong),
					Italic:    hasEmphasis(c, atom.I) || hasEmphasis(c, atom.Em),
					Underline: hasEmphasis(c, atom.U),
					Alignment: nodeAlignment(c),
					RowSpan:   spanAttr(c, "rowspan"),
					ColSpan:   spanAttr(c, "colspan"),
				}
				*chunks = append(*chunks, chunk.Chunk{
					Kind:         chunk.KindTableCell,
					OriginalText: collectText(c),
					Style:        style,
				})
				col++
			}
			row++
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
}

// spanAttr parses a rowspan/colspan attribute, returning 0 when absent or
// when the value is the default span of 1.
func spanAttr(n *html.Node, name string) int {
	for _, a := range n.Attr {
		if a.Key == name {
			v, err := strconv.Atoi(strings.TrimSpace(a.Val))
			if err == nil && v > 1 {
				return v
			}
		}
	}
	return 0
}

var alignPattern = regexp.MustCompile(`(?i)text-align\s*:\s*(left|center|right|justify)`)

// nodeAlignment reads alignment from the style or align attribute.
func nodeAlignment(n *html.Node) string {
	for _, a := range n.Attr {
		switch a.Key {
		case "style":
			if m := alignPattern.FindStringSubmatch(a.Val); len(m) > 1 {
				return strings.ToLower(m[1])
			}
		case "align":
			v := strings.ToLower(strings.TrimSpace(a.Val))
			switch v {
			case "left", "center", "right", "justify":
				return v
			}
		}
	}
	return ""
}

// hasEmphasis reports whether the subtree contains the given element with
// actual text inside it.
func hasEmphasis(n *html.Node, a atom.Atom) bool {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return collectText(n) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasEmphasis(c, a) {
			return true
		}
	}
	return false
}

// collectText extracts all text from a node subtree, joining fragments
// with single spaces.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
)

// DocxConverter converts DOCX bytes to semantic HTML by streaming
// word/document.xml out of the ZIP archive. Headings, run emphasis, table
// structure, and paragraph alignment survive the conversion; everything
// else is flattened to text.
type DocxConverter struct{}

// NewDocxConverter creates a ready-to-use converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Convert implements DocumentConverter.
func (c *DocxConverter) Convert(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return convertDocumentXML(rc)
}

// runFormat tracks the emphasis flags of the current text run.
type runFormat struct {
	bold      bool
	italic    bool
	underline bool
}

// convertDocumentXML streams WordprocessingML tokens and writes HTML.
func convertDocumentXML(r io.Reader) ([]byte, error) {
	decoder := xml.NewDecoder(r)

	var out strings.Builder
	out.WriteString("<html><body>")

	var para strings.Builder
	var paraStyle string
	var paraAlign string
	var run runFormat
	inParagraph := false
	inRunProps := false
	inText := false
	tableDepth := 0

	flushParagraph := func() {
		text := strings.TrimSpace(para.String())
		if tableDepth > 0 {
			// Table cells carry their paragraph text directly.
			if text != "" {
				out.WriteString(text)
			}
			return
		}

		if level := docxHeadingLevel(paraStyle); level > 0 {
			fmt.Fprintf(&out, "<h%d>%s</h%d>", level, text, level)
			return
		}

		attr := ""
		if a := alignmentStyle(paraAlign); a != "" {
			attr = fmt.Sprintf(" style=%q", a)
		}
		fmt.Fprintf(&out, "<p%s>%s</p>", attr, text)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				out.WriteString("<table>")
			case "tr":
				if tableDepth > 0 {
					out.WriteString("<tr>")
				}
			case "tc":
				if tableDepth > 0 {
					out.WriteString("<td>")
				}
			case "p":
				inParagraph = true
				para.Reset()
				paraStyle = ""
				paraAlign = ""
			case "pStyle":
				if inParagraph {
					paraStyle = attrVal(t, "val")
				}
			case "jc":
				if inParagraph {
					paraAlign = attrVal(t, "val")
				}
			case "r":
				run = runFormat{}
			case "rPr":
				inRunProps = true
			case "b":
				if inRunProps && !isDocxOff(attrVal(t, "val")) {
					run.bold = true
				}
			case "i":
				if inRunProps && !isDocxOff(attrVal(t, "val")) {
					run.italic = true
				}
			case "u":
				if inRunProps && attrVal(t, "val") != "none" {
					run.underline = true
				}
			case "t":
				inText = true
			case "br":
				if inParagraph {
					para.WriteString("<br/>")
				}
			}

		case xml.CharData:
			if inText && inParagraph {
				para.WriteString(wrapRunText(html.EscapeString(string(t)), run))
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRunProps = false
			case "p":
				if inParagraph {
					inParagraph = false
					flushParagraph()
				}
			case "tc":
				if tableDepth > 0 {
					out.WriteString("</td>")
				}
			case "tr":
				if tableDepth > 0 {
					out.WriteString("</tr>")
				}
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
					out.WriteString("</table>")
				}
			}
		}
	}

	out.WriteString("</body></html>")
	return []byte(out.String()), nil
}

// wrapRunText applies run emphasis as nested HTML tags.
func wrapRunText(text string, f runFormat) string {
	if text == "" {
		return text
	}
	if f.underline {
		text = "<u>" + text + "</u>"
	}
	if f.italic {
		text = "<i>" + text + "</i>"
	}
	if f.bold {
		text = "<b>" + text + "</b>"
	}
	return text
}

// attrVal returns the value of the named attribute, ignoring namespaces.
func attrVal(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// isDocxOff reports whether a WordprocessingML toggle value disables the
// property. Absent values mean enabled.
func isDocxOff(val string) bool {
	return val == "0" || val == "false" || val == "off"
}

// alignmentStyle maps a WordprocessingML jc value to a CSS declaration.
func alignmentStyle(jc string) string {
	switch jc {
	case "center":
		return "text-align:center"
	case "right", "end":
		return "text-align:right"
	case "both", "distribute":
		return "text-align:justify"
	default:
		return ""
	}
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" to 1, "Title" to 1, "Subtitle" to 2.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

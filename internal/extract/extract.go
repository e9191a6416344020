package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeText = "text/plain"
)

// ErrUnsupported is returned by ExtractStrict for media types without an extractor.
var ErrUnsupported = errors.New("unsupported file type")

// Extract returns the plain text of a document. Unsupported media types yield a
// descriptive message instead of an error; malformed documents still fail.
func Extract(ctx context.Context, data []byte, mediaType string, fileName string) (string, error) {
	text, err := ExtractStrict(ctx, data, mediaType, fileName)
	if errors.Is(err, ErrUnsupported) {
		return UnsupportedMessage(fileName), nil
	}
	return text, err
}

// UnsupportedMessage is the text reported for a document that cannot be extracted.
func UnsupportedMessage(fileName string) string {
	return "Unsupported file type: " + fileName
}

// ExtractStrict is Extract without the unsupported-type fallback.
func ExtractStrict(ctx context.Context, data []byte, mediaType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMediaType(mediaType, fileName, data)
	switch normalized {
	case MimePDF:
		return extractPDF(data)
	case MimeDOCX:
		return extractDOCX(data)
	case MimePPTX:
		return extractPPTX(data)
	case MimeText:
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
}

// NormalizeMediaType strips parameters from a declared media type and falls back to
// content sniffing and then the file extension when the declaration is generic.
func NormalizeMediaType(mediaType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	switch clean {
	case "", "application/octet-stream", "application/zip", "application/x-zip-compressed":
	default:
		return clean
	}

	if len(data) > 0 {
		detected := mimetype.Detect(data)
		for m := detected; m != nil; m = m.Parent() {
			switch base := strings.Split(m.String(), ";")[0]; base {
			case MimePDF, MimeDOCX, MimePPTX, MimeText:
				return base
			}
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".pptx":
		return MimePPTX
	case ".txt", ".md":
		return MimeText
	}
	if clean == "" {
		return "application/octet-stream"
	}
	return clean
}

// extractPDF emits one "[Page n]" block per page that has text.
func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	pages := make([]string, 0, pdfReader.NumPage())
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return joinPages(pages), nil
}

func joinPages(pages []string) string {
	blocks := make([]string, 0, len(pages))
	for i, text := range pages {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Page %d]\n%s", i+1, text))
	}
	return strings.Join(blocks, "\n\n")
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	raw, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return "", err
	}
	return docxParagraphs(raw), nil
}

// docxParagraphs returns the non-blank paragraphs one per line. Heading paragraphs
// start a new block marked "[Page n]", n being the paragraph's 1-based position in
// the document.
func docxParagraphs(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var (
		lines   []string
		text    strings.Builder
		style   string
		depth   int
		index   int
		inText  bool
		inProps bool
	)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
				if depth == 1 {
					index++
					text.Reset()
					style = ""
				}
			case "pStyle":
				if depth == 1 {
					style = attr(t, "val")
				}
			case "t":
				inText = true
			case "pPr":
				inProps = true
			case "tab":
				if !inProps {
					text.WriteString("\t")
				}
			case "br", "cr":
				text.WriteString("\n")
			}
		case xml.CharData:
			if inText && depth > 0 {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr":
				inProps = false
			case "p":
				depth--
				if depth > 0 {
					break
				}
				line := text.String()
				if strings.TrimSpace(line) == "" {
					break
				}
				if isHeadingStyle(style) {
					line = fmt.Sprintf("\n[Page %d] %s", index, line)
				}
				lines = append(lines, line)
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isHeadingStyle(style string) bool {
	return len(style) >= len("Heading") && strings.EqualFold(style[:len("Heading")], "Heading")
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func extractPPTX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pptx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	type slide struct {
		num  int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if m := slideName.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{num: n, name: f.Name})
		}
	}
	if len(slides) == 0 {
		return "", errors.New("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		raw, err := readZipEntry(zr, s.name)
		if err != nil {
			return "", err
		}
		text := stripOOXML(raw, "p")
		block := fmt.Sprintf("[Slide %d]", s.num)
		if text != "" {
			block += "\n" + text
		}
		parts = append(parts, block)
	}
	return strings.Join(parts, "\n\n"), nil
}

func readZipEntry(zr *zip.Reader, want string) ([]byte, error) {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found", want)
}

// stripOOXML keeps character data and breaks lines at paragraph ends.
func stripOOXML(raw []byte, paragraph string) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return strings.TrimSpace(buf.String())
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == paragraph || t.Name.Local == "br" {
				if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

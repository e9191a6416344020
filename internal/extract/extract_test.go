package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Week 3: Sorting</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>CLO 2 </w:t></w:r><w:r><w:t>applies here.</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func TestExtractDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": docxBody})

	got, err := Extract(context.Background(), data, MimeDOCX, "overview.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Week 3: Sorting\nCLO 2 applies here."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractDOCXMarksHeadings(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Algorithms 101</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Outcomes</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>CLO 1: analyse sorting.</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Schedule</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Week</w:t></w:r><w:r><w:tab/><w:t>Topic</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildZip(t, map[string]string{"word/document.xml": body})

	got, err := Extract(context.Background(), data, MimeDOCX, "overview.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Algorithms 101\n\n[Page 2] Outcomes\nCLO 1: analyse sorting.\n\n[Page 5] Schedule\nWeek\tTopic"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// buildPDF writes a minimal PDF with one Helvetica text line per page. An empty
// string produces a page without text.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	var objects []string
	kids := make([]string, 0, len(pages))
	// 1: catalog, 2: pages, 3: font, then a page and content pair per page.
	for i, text := range pages {
		pageObj := 4 + 2*i
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}, objects...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFMarksPages(t *testing.T) {
	data := buildPDF(t, "Intro to sorting", "", "Merge sort")

	got, err := Extract(context.Background(), data, MimePDF, "lesson.pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.HasPrefix(got, "[Page 1]\n") || !strings.Contains(got, "Intro to sorting") {
		t.Fatalf("missing first page block: %q", got)
	}
	if strings.Contains(got, "[Page 2]") {
		t.Fatalf("blank page should be skipped: %q", got)
	}
	if !strings.Contains(got, "\n\n[Page 3]\n") || !strings.HasSuffix(got, "Merge sort") {
		t.Fatalf("missing third page block: %q", got)
	}
}

func TestJoinPages(t *testing.T) {
	got := joinPages([]string{"  first\n", "", " \n ", "fourth"})
	want := "[Page 1]\nfirst\n\n[Page 4]\nfourth"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if joinPages(nil) != "" {
		t.Fatal("expected empty text for no pages")
	}
}

func TestExtractZipDeclaredDocxNormalizes(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": docxBody})

	if _, err := ExtractStrict(context.Background(), data, "application/zip", "overview.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestExtractPPTXOrdersSlides(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	data := buildZip(t, map[string]string{
		"ppt/slides/slide10.xml": slide("Wrap up"),
		"ppt/slides/slide2.xml":  slide("Merge sort"),
		"ppt/slides/slide1.xml":  slide("Intro"),
		"ppt/presentation.xml":   `<p:presentation xmlns:p="p"/>`,
	})

	got, err := Extract(context.Background(), data, MimePPTX, "lesson.pptx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "[Slide 1]\nIntro\n\n[Slide 2]\nMerge sort\n\n[Slide 10]\nWrap up"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractPlainText(t *testing.T) {
	got, err := Extract(context.Background(), []byte("plain notes"), "text/plain; charset=utf-8", "notes.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "plain notes" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractSniffsUndeclaredText(t *testing.T) {
	got, err := Extract(context.Background(), []byte("sniffed"), "", "blob")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "sniffed" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractUnsupportedFallsBack(t *testing.T) {
	got, err := Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png", "diagram.png")
	if err != nil {
		t.Fatalf("expected fallback message, got error: %v", err)
	}
	if got != "Unsupported file type: diagram.png" {
		t.Fatalf("unexpected fallback %q", got)
	}

	_, err = ExtractStrict(context.Background(), []byte{0x89}, "image/png", "diagram.png")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractRealZipUnsupported(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := ExtractStrict(context.Background(), data, "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported file type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractMalformedPDFFails(t *testing.T) {
	if _, err := Extract(context.Background(), []byte("not a pdf"), MimePDF, "overview.pdf"); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	data := buildZip(t, map[string]string{"word/styles.xml": "<x/>"})
	if _, err := Extract(context.Background(), data, MimeDOCX, "broken.docx"); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Extract(ctx, []byte("x"), MimeText, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

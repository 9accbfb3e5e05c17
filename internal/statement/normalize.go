package statement

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// containerKind is the physical file container, detected from magic bytes
// rather than the file extension, which banks get wrong routinely.
type containerKind int

const (
	containerText containerKind = iota
	containerSpreadsheet
	containerPDF
)

var (
	magicPDF  = []byte("%PDF")
	magicZip  = []byte{0x50, 0x4b, 0x03, 0x04}             // XLSX (zip)
	magicOLE2 = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1} // legacy XLS
)

func sniffContainer(data []byte) containerKind {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return containerPDF
	case bytes.HasPrefix(data, magicZip), bytes.HasPrefix(data, magicOLE2):
		return containerSpreadsheet
	default:
		return containerText
	}
}

// NormalizeLines converts raw statement bytes into text lines that the
// format registry and parsers operate on. Spreadsheets become CSV-shaped
// lines (cells joined by comma, quoted when needed); PDFs contribute one
// line per visual row; anything else is treated as delimited text. The
// transform is pure; unreadable containers fail with the cause attached.
func NormalizeLines(data []byte) ([]string, error) {
	switch sniffContainer(data) {
	case containerPDF:
		lines, err := pdfLines(data)
		if err != nil {
			return nil, &ParseError{Msg: "reading PDF statement", Err: err}
		}
		return lines, nil
	case containerSpreadsheet:
		lines, err := spreadsheetLines(data)
		if err != nil {
			return nil, &ParseError{Msg: "reading spreadsheet statement", Err: err}
		}
		return lines, nil
	default:
		return textLines(data), nil
	}
}

func textLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// spreadsheetLines reads the first sheet and renders every row as one
// CSV-shaped line. GetRows yields formatted values: dates come out in the
// cell's display format and formula cells yield their cached result, which
// is exactly what the text parsers expect.
func spreadsheetLines(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = quoteCell(strings.TrimSpace(cell))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return lines, nil
}

// quoteCell wraps a cell in quotes when its value would otherwise break the
// comma-joined line, doubling any embedded quotes.
func quoteCell(cell string) string {
	if !strings.ContainsAny(cell, ",\"") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// pdfLines extracts page text row by row. The pdf library panics on some
// malformed files, so extraction is wrapped in a recover.
func pdfLines(data []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		// Row extraction found nothing; try the whole-document path.
		plain, plainErr := r.GetPlainText()
		if plainErr != nil {
			return nil, fmt.Errorf("no text rows and plain extraction failed: %w", plainErr)
		}
		raw, readErr := io.ReadAll(plain)
		if readErr != nil {
			return nil, fmt.Errorf("reading plain text: %w", readErr)
		}
		for _, line := range strings.Split(string(raw), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no extractable text; the pdf may be image-based or use custom font encodings")
	}
	return lines, nil
}

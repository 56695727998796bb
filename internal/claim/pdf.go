package claim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points (US Letter, one inch margins).
const (
	pageWidth     = 612.0
	pageHeight    = 792.0
	margin        = 72.0
	labelWidth    = 108.0
	valueWidth    = 324.0
	cellPadding   = 6.0
	lineHeight    = 12.0
	headerHeight  = 21.6
	sectionGap    = 18.0
	footerReserve = 36.0
)

const title = "CMS-1500 HEALTH INSURANCE CLAIM FORM EXAMPLE"

// PDFAssembler writes claim documents into a directory. Each patient has one
// file that is overwritten on every regeneration.
type PDFAssembler struct {
	logger    *slog.Logger
	now       func() time.Time
	render    func(io.Writer, Claim) error
	outputDir string
}

// NewPDFAssembler creates an assembler writing to outputDir.
func NewPDFAssembler(outputDir string, logger *slog.Logger) *PDFAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	if outputDir == "" {
		outputDir = "."
	}
	a := &PDFAssembler{
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
	a.render = a.Render
	return a
}

// Assemble renders c and returns the path of the written file.
func (a *PDFAssembler) Assemble(_ context.Context, c Claim) (string, error) {
	if err := os.MkdirAll(a.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create claims directory: %w", err)
	}

	var buf bytes.Buffer
	if err := a.render(&buf, c); err != nil {
		return "", err
	}

	path := filepath.Join(a.outputDir, FileName(c.PatientName()))
	if err := replaceFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	a.logger.Info("claim document written",
		"path", path,
		"diagnoses", len(c.Diagnoses),
		"procedures", len(c.Procedures))

	return path, nil
}

// replaceFile swaps data in at path through a temporary file, so a failed
// write leaves the previous claim in place.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".claim-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create claim file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write claim file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close claim file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace claim file: %w", err)
	}
	return nil
}

// Render writes c as a PDF to w.
func (a *PDFAssembler) Render(w io.Writer, c Claim) error {
	doc := newDocument()

	doc.title(title)

	doc.section("PATIENT INFORMATION")
	doc.table([][2]string{
		{"Name:", valueOr(c.Patient, "name")},
		{"DOB:", valueOr(c.Patient, "dob")},
		{"Gender:", valueOr(c.Patient, "gender")},
		{"Address:", valueOr(c.Patient, "address")},
		{"Phone:", valueOr(c.Patient, "phone")},
	}, false)

	doc.section("INSURANCE INFORMATION")
	doc.table([][2]string{
		{"Provider:", valueOr(c.Patient, "insurance")},
		{"Policy #:", valueOr(c.Patient, "policy")},
		{"Group #:", valueOr(c.Patient, "group")},
	}, false)

	if len(c.Clinical) > 0 {
		rows := make([][2]string, 0, len(c.Clinical))
		for _, key := range sortedKeys(c.Clinical) {
			rows = append(rows, [2]string{clinicalLabel(key) + ":", c.Clinical[key]})
		}
		doc.section("CLINICAL INFORMATION")
		doc.table(rows, false)
	}

	if len(c.Diagnoses) > 0 {
		rows := [][2]string{{"Code", "Description"}}
		for _, d := range c.Diagnoses {
			rows = append(rows, [2]string{d.Code, d.Disease})
		}
		doc.section("DIAGNOSIS CODES (ICD-10)")
		doc.table(rows, true)
	}

	if len(c.Procedures) > 0 {
		rows := [][2]string{{"Code", "Description"}}
		for _, p := range c.Procedures {
			rows = append(rows, [2]string{p.Code, p.Procedure})
		}
		doc.section("PROCEDURE CODES (CPT-4)")
		doc.table(rows, true)
	}

	doc.footer(a.now())

	if err := doc.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func valueOr(fields map[string]string, key string) string {
	if v := fields[key]; v != "" {
		return v
	}
	return "N/A"
}

// document tracks the write cursor and breaks pages when content would run
// into the bottom margin.
type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newDocument() *document {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(title, false)
	pdf.SetCreator("medicoder", false)
	pdf.AddPage()

	return &document{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		y:   margin,
	}
}

func (d *document) ensureSpace(height float64) {
	if d.y+height > pageHeight-margin {
		d.pdf.AddPage()
		d.y = margin
	}
}

func (d *document) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.SetTextColor(0, 0, 0)
	width := d.pdf.GetStringWidth(text)
	d.pdf.Text((pageWidth-width)/2, d.y+16, d.tr(text))
	d.y += 36
}

func (d *document) section(label string) {
	d.ensureSpace(headerHeight + 2*lineHeight + 2*cellPadding)
	d.pdf.SetFillColor(211, 211, 211)
	d.pdf.Rect(margin, d.y, pageWidth-2*margin, headerHeight, "F")
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Text(margin+7.2, d.y+headerHeight-7, d.tr(label))
	d.y += headerHeight + 7.2
}

// table draws a two-column grid. Cells wrap, and a row that does not fit on
// the current page moves to the next one. A row taller than a whole page is
// split across pages.
func (d *document) table(rows [][2]string, header bool) {
	widths := [2]float64{labelWidth, valueWidth}

	for i, row := range rows {
		bold := header && i == 0
		style := ""
		if bold {
			style = "B"
		}
		d.pdf.SetFont("Helvetica", style, 10)

		var cells [2][]string
		lines := 1
		for col, text := range row {
			split := d.pdf.SplitLines([]byte(d.tr(text)), widths[col]-2*cellPadding)
			for _, s := range split {
				cells[col] = append(cells[col], string(s))
			}
			if len(cells[col]) == 0 {
				cells[col] = []string{""}
			}
			lines = max(lines, len(cells[col]))
		}

		for start := 0; start < lines; {
			rest := lines - start
			left := d.linesLeft()
			if rest > left && (rest <= linesPerPage() || left < 1) {
				d.pdf.AddPage()
				d.y = margin
				left = d.linesLeft()
			}
			n := min(rest, left)
			d.row(cells, widths, start, n, bold)
			start += n
		}
	}
	d.y += sectionGap
}

// row draws lines [start, start+n) of every cell.
func (d *document) row(cells [2][]string, widths [2]float64, start, n int, bold bool) {
	height := float64(n)*lineHeight + 2*cellPadding

	x := margin
	for col := range cells {
		d.pdf.SetDrawColor(128, 128, 128)
		d.pdf.SetLineWidth(0.5)
		if bold {
			d.pdf.SetFillColor(211, 211, 211)
			d.pdf.Rect(x, d.y, widths[col], height, "FD")
		} else {
			d.pdf.Rect(x, d.y, widths[col], height, "D")
		}
		d.pdf.SetTextColor(0, 0, 0)
		end := min(start+n, len(cells[col]))
		for k := start; k < end; k++ {
			d.pdf.Text(x+cellPadding, d.y+cellPadding+float64(k-start+1)*lineHeight-2, cells[col][k])
		}
		x += widths[col]
	}
	d.y += height
}

// linesLeft is how many wrapped lines fit in one row before the bottom margin.
func (d *document) linesLeft() int {
	return int((pageHeight - margin - d.y - 2*cellPadding) / lineHeight)
}

func linesPerPage() int {
	usable := pageHeight - 2*margin - 2*cellPadding
	return int(usable / lineHeight)
}

func (d *document) footer(generated time.Time) {
	d.ensureSpace(footerReserve)

	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetTextColor(128, 128, 128)
	d.pdf.Text(margin, d.y+8, "This is a computer-generated form created by the Medical Coding Assistant.")
	d.pdf.Text(margin, d.y+22, "Generated on: "+generated.Format("2006-01-02 15:04:05"))
}

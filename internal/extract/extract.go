// Package extract turns scanned documents and images into plain text using
// the tesseract OCR engine, rasterizing PDFs with poppler's pdftoppm first.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/medicoder/internal/common"
	"github.com/schollz/progressbar/v3"
)

// Extraction errors. Both are returned wrapped in a *common.UserError.
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures the OCR toolchain.
type Options struct {
	// Progress receives a per-page progress bar for PDFs. Nil disables it.
	Progress      io.Writer
	Logger        *slog.Logger
	Runner        Runner
	TesseractPath string
	// PopplerPath is the directory holding pdftoppm. Empty means $PATH.
	PopplerPath string
}

// Extractor reads text out of PDF and image files.
type Extractor struct {
	progress  io.Writer
	logger    *slog.Logger
	run       Runner
	tesseract string
	pdftoppm  string
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	e := &Extractor{
		progress:  opts.Progress,
		logger:    opts.Logger,
		run:       opts.Runner,
		tesseract: opts.TesseractPath,
		pdftoppm:  "pdftoppm",
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.run == nil {
		e.run = runCommand
	}
	if e.tesseract == "" {
		e.tesseract = "tesseract"
	}
	if opts.PopplerPath != "" {
		e.pdftoppm = filepath.Join(opts.PopplerPath, "pdftoppm")
	}
	return e
}

// CleanPath trims whitespace and a pair of surrounding quotes from a path
// pasted into a chat prompt.
func CleanPath(input string) string {
	path := strings.TrimSpace(input)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '"' || first == '\'') && first == last {
			path = strings.TrimSpace(path[1 : len(path)-1])
		}
	}
	return path
}

// Extract returns the text of the document at path. The file must exist
// before any extraction is attempted; the codepath is chosen by extension.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", common.NewUserError("Error: File not found. Please provide a valid file path.",
			fmt.Errorf("%w: %s", ErrFileNotFound, path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := e.extractPDF(ctx, path)
		if err != nil {
			return "", common.NewUserError(
				fmt.Sprintf("Error processing PDF: %v. Please ensure Poppler is installed and the path is correct.", err), err)
		}
		return text, nil
	case ".jpg", ".jpeg", ".png":
		text, err := e.ocr(ctx, path)
		if err != nil {
			return "", common.NewUserError(fmt.Sprintf("Error processing document: %v", err), err)
		}
		return text, nil
	default:
		return "", common.NewUserError("Error: Unsupported file format. Please provide a PDF or JPG/JPEG/PNG file.",
			fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path)))
	}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "medicoder-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove OCR temp dir", "dir", dir, "error", err)
		}
	}()

	prefix := filepath.Join(dir, "page")
	if _, err := e.run(ctx, e.pdftoppm, "-r", "300", "-png", path, prefix); err != nil {
		return "", fmt.Errorf("failed to rasterize PDF: %w", err)
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", fmt.Errorf("failed to list rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages rendered from %s", filepath.Base(path))
	}
	sort.Strings(pages)

	bar := e.newProgressBar(len(pages))

	var text strings.Builder
	for _, page := range pages {
		pageText, err := e.ocr(ctx, page)
		if err != nil {
			return "", err
		}
		text.WriteString(pageText)
		text.WriteString("\n")

		if bar != nil {
			if err := bar.Add(1); err != nil {
				e.logger.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	e.logger.Debug("extracted PDF text", "file", path, "pages", len(pages), "chars", text.Len())
	return text.String(), nil
}

func (e *Extractor) ocr(ctx context.Context, image string) (string, error) {
	out, err := e.run(ctx, e.tesseract, image, "stdout")
	if err != nil {
		return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(image), err)
	}
	return string(out), nil
}

func (e *Extractor) newProgressBar(pages int) *progressbar.ProgressBar {
	if e.progress == nil {
		return nil
	}
	return progressbar.NewOptions(pages,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Reading pages..."),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(e.progress); err != nil {
				e.logger.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // tool paths come from local configuration

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s: %s", filepath.Base(name), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to execute %s: %w", filepath.Base(name), err)
	}
	return stdout.Bytes(), nil
}

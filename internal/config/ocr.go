package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/medicoder/internal/extract"
	"github.com/spf13/viper"
)

// LoadExtractOptions builds OCR settings. TESSERACT_CMD and POPPLER_PATH are
// honored when the config leaves the tools at their defaults.
func LoadExtractOptions(v *viper.Viper, progress io.Writer, logger *slog.Logger) extract.Options {
	tesseract := Path(v, KeyTesseractPath)
	if tesseract == "" || tesseract == "tesseract" {
		if env := os.Getenv("TESSERACT_CMD"); env != "" {
			tesseract = ExpandPath(env)
		}
	}

	poppler := Path(v, KeyPopplerPath)
	if poppler == "" {
		poppler = ExpandPath(os.Getenv("POPPLER_PATH"))
	}

	return extract.Options{
		Progress:      progress,
		Logger:        logger,
		TesseractPath: tesseract,
		PopplerPath:   poppler,
	}
}

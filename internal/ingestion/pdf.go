package ingestion

import (
	"io"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ExtractTextFromPDF reads the PDF text layer, falling back to the pdftotext
// CLI when the layer is empty. Scanned PDFs come back empty.
func ExtractTextFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(b)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		if out, err := exec.Command("pdftotext", "-layout", path, "-").Output(); err == nil {
			return string(out), nil
		}
	}
	return text, nil
}

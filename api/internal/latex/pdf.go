package latex

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

type PDFInfo struct {
	Pages int
}

// InspectPDF opens the compiled artifact and reports its page count.
func InspectPDF(path string) (info PDFInfo, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inspect pdf: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return PDFInfo{Pages: r.NumPage()}, nil
}

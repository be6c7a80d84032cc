package source

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrImageLoad marks a specimen that could not be loaded: missing file,
// unsupported format or corrupt data.
var ErrImageLoad = errors.New("image load failed")

// Source enumerates specimen images for one analysis run. Entries keep a
// stable order so batch output order matches enumeration order.
type Source interface {
	Count() int
	Name(index int) string
	Image(index int) (image.Image, error)
	Close() error
}

// Open picks a source for the given path: a PDF becomes a plate source with
// one specimen per page, anything else is treated as an image file or a
// directory of images.
func Open(path string, dpi int) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFSource(path, dpi)
	}
	return NewImageSource(path)
}

// PDFSource treats each page of a scanned plate PDF as one specimen image.
type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *PDFSource) Count() int {
	return s.doc.NumPage()
}

func (s *PDFSource) Name(index int) string {
	return fmt.Sprintf("%s#page=%d", s.path, index+1)
}

// Image renders one page. A fresh document handle per call keeps renders
// safe under parallel batch workers.
func (s *PDFSource) Image(index int) (image.Image, error) {
	workerDoc, err := fitz.New(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, s.path, err)
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, float64(s.dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, s.Name(index), err)
	}
	return img, nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}

// Package document opens and saves PDF files through pdfcpu and exposes
// their interactive form.
package document

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/pdfobj"
)

var ErrNotPDF = errors.New("not a PDF file")

var _ pdfobj.Store = (*model.Context)(nil)

func init() {
	// pdfcpu otherwise creates a configuration directory on first use.
	api.DisableConfigDir()
}

// Document is a parsed PDF held in memory.
type Document struct {
	ctx     *model.Context
	catalog types.Dict
}

// Open reads the PDF at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a PDF from rs.
func Read(rs io.ReadSeeker) (*Document, error) {
	if err := checkHeader(rs); err != nil {
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}
	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &Document{ctx: ctx, catalog: catalog}, nil
}

func checkHeader(rs io.ReadSeeker) error {
	head := make([]byte, 1024)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read header: %w", err)
	}
	if !bytes.Contains(head[:n], []byte("%PDF-")) {
		return ErrNotPDF
	}
	_, err = rs.Seek(0, io.SeekStart)
	return err
}

// Store returns the object store of the document.
func (d *Document) Store() pdfobj.Store { return d.ctx }

// Catalog returns the document catalog.
func (d *Document) Catalog() types.Dict { return d.catalog }

// Form loads the interactive form. It returns form.ErrNoForm when the
// document has none.
func (d *Document) Form() (*form.Form, error) {
	return form.Load(d.ctx, d.catalog)
}

// Rotation returns the /Rotate of the first page, inherited through the
// page tree, or 0.
func (d *Document) Rotation() int {
	return FirstPageRotation(d.ctx, d.catalog)
}

// FirstPageRotation walks the page tree to its first leaf.
func FirstPageRotation(store pdfobj.Store, catalog types.Dict) int {
	node, err := store.DereferenceDict(catalog["Pages"])
	rotate := 0
	for depth := 0; err == nil && node != nil && depth < 64; depth++ {
		if r, ok := pdfobj.Int(store, node["Rotate"]); ok {
			rotate = r
		}
		if typ, _ := pdfobj.Name(store, node["Type"]); typ == "Page" {
			break
		}
		kids, kerr := store.DereferenceArray(node["Kids"])
		if kerr != nil || len(kids) == 0 {
			break
		}
		node, err = store.DereferenceDict(kids[0])
	}
	return ((rotate % 360) + 360) % 360
}

// Write serializes the document to w.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := api.WriteContext(d.ctx, bw); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return bw.Flush()
}

// Save writes the document to path through a temporary file in the same
// directory, so a failed write leaves no partial output.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".formfill-*.pdf")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := d.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

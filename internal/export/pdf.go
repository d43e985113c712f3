package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 15.0
	panelGap   = 6.0
)

// WritePDF renders sb as an A4 portrait page: title, the panels stacked with
// their text, then the moral.
func WritePDF(w io.Writer, sb Storyboard) error {
	imgs, err := sb.decode()
	if err != nil {
		return err
	}
	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(sb.Title, true)
	p.SetCreator("sketchstory", true)
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.SetAutoPageBreak(true, pageMargin)
	p.AddPage()

	pageW, pageH := p.GetPageSize()
	width := pageW - 2*pageMargin

	p.SetFont("Helvetica", "B", 20)
	p.MultiCell(width, 10, tr(sb.Title), "", "C", false)
	p.Ln(4)

	// Three panels share the page; each is scaled to a fixed height.
	const panelH = 62.0
	for i, f := range sb.Frames {
		b := imgs[i].Bounds()
		aspect := float64(b.Dx()) / float64(b.Dy())
		w, h := panelH*aspect, panelH
		if w > width {
			w, h = width, width/aspect
		}
		if p.GetY()+h+12 > pageH-pageMargin {
			p.AddPage()
		}
		name := fmt.Sprintf("panel%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader(name, opts, bytes.NewReader(f.PNG))
		x := pageMargin + (width-w)/2
		y := p.GetY()
		p.SetDrawColor(60, 60, 60)
		p.SetLineWidth(0.3)
		p.Rect(x, y, w, h, "D")
		p.ImageOptions(name, x, y, w, h, false, opts, 0, "")
		p.SetY(y + h + 2)
		if f.Text != "" {
			p.SetFont("Helvetica", "", 12)
			p.MultiCell(width, 6, tr(f.Text), "", "C", false)
		}
		p.Ln(panelGap)
	}

	if sb.Moral != "" {
		p.SetFont("Helvetica", "I", 13)
		p.MultiCell(width, 7, tr("Moral: "+sb.Moral), "", "C", false)
	}
	if err := p.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return p.Output(w)
}

// SavePDF writes the storyboard PDF to path.
func SavePDF(path string, sb Storyboard) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sb); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

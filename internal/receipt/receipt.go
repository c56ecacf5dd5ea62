// Package receipt renders a printable booking receipt.
package receipt

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/service-booking/internal/model"
)

// Render returns an A4 PDF listing the booking with a QR code linking to
// trackURL.
func Render(b model.Booking, trackURL string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(trackURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking "+b.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(45, 8, tr(label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 8, tr(value), "", 1, "", false, 0, "")
	}
	row("Booking ID:", b.ID)
	row("Name:", b.Name)
	row("Service:", b.ServiceTitle)
	row("Date:", b.Date)
	row("Status:", string(b.Status))

	if len(b.Addons) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Add-ons")
		pdf.Ln(8)
		for _, a := range b.Addons {
			row("  "+a.Name, "$"+formatPrice(a.Price))
		}
	}

	if len(b.Options) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Options")
		pdf.Ln(8)
		names := make([]string, 0, len(b.Options))
		for name := range b.Options {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row("  "+name, b.Options[name])
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(45, 10, "Total:", "T", 0, "", false, 0, "")
	pdf.CellFormat(0, 10, "$"+formatPrice(b.TotalPrice), "T", 1, "", false, 0, "")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")
	pdf.SetXY(150, 61)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(40, 4, "Scan to track", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

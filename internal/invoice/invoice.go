// Package invoice renders the admin PDF invoice of a booking.
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

// Invoice is what goes on the document.  Amounts come from the stored
// booking and its option snapshots, never from live catalog prices.
type Invoice struct {
	Booking    model.Booking
	YachtName  string
	VATPercent float64
	Currency   string
	IssuedAt   time.Time
}

// Totals are the figures printed at the bottom of the invoice.
type Totals struct {
	CharterCents  int64
	OptionsCents  int64
	SubtotalCents int64
	VATCents      int64
	GrossCents    int64
}

// Compute splits the stored total into charter and options and adds VAT.
func (inv Invoice) Compute() Totals {
	var opts int64
	for _, o := range inv.Booking.Options {
		opts += o.OptionPriceCents
	}
	sub := inv.Booking.TotalPriceCents
	vat, gross := pricing.WithVAT(sub, inv.VATPercent)
	return Totals{
		CharterCents:  sub - opts,
		OptionsCents:  opts,
		SubtotalCents: sub,
		VATCents:      vat,
		GrossCents:    gross,
	}
}

// Reference is the printed booking reference, also encoded in the QR.
func (inv Invoice) Reference() string {
	return fmt.Sprintf("YC-%06d", inv.Booking.ID)
}

// Render writes a single page A4 PDF to w.
func Render(w io.Writer, inv Invoice) error {
	if inv.Booking.ID == 0 {
		return errors.New("invoice: booking has no id")
	}
	t := inv.Compute()
	money := func(c int64) string { return pricing.Format(c, inv.Currency) }

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// --- Header ---
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "TAX INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Reference: "+inv.Reference())
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued: "+inv.IssuedAt.UTC().Format("02 Jan 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status: "+string(inv.Booking.Status))

	qr, err := qrcode.Encode(inv.Reference(), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("invoice qr: %w", err)
	}
	pdf.RegisterImageOptionsReader("ref", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("ref", 160, 12, 35, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")
	pdf.Ln(14)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	// --- Customer and charter ---
	section(pdf, "CUSTOMER")
	pdf.Cell(0, 6, tr(inv.Booking.CustomerName))
	pdf.Ln(6)
	pdf.Cell(0, 6, inv.Booking.CustomerEmail)
	pdf.Ln(6)
	pdf.Cell(0, 6, inv.Booking.CustomerPhone)
	pdf.Ln(10)

	section(pdf, "CHARTER")
	pdf.Cell(0, 6, "Yacht: "+tr(inv.YachtName))
	pdf.Ln(6)
	when := inv.Booking.BookingDate.Format("02 Jan 2006")
	if inv.Booking.StartTime != "" {
		when += " " + inv.Booking.StartTime
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s, %d hours", when, inv.Booking.DurationHours))
	pdf.Ln(10)

	// --- Lines ---
	section(pdf, "DETAILS")
	line(pdf, fmt.Sprintf("Charter, %d hours", inv.Booking.DurationHours), money(t.CharterCents))
	for _, o := range inv.Booking.Options {
		line(pdf, tr(o.OptionName), money(o.OptionPriceCents))
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(2)
	line(pdf, "Subtotal", money(t.SubtotalCents))
	line(pdf, fmt.Sprintf("VAT %g%%", inv.VATPercent), money(t.VATCents))
	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, "Total", money(t.GrossCents))

	pdf.SetY(280)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, "Prices are charged as stored on the booking. Promotions shown on the website are not applied.", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.CellFormat(130, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, amount, "", 1, "R", false, 0, "")
}

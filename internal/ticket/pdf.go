package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// Render builds a one page e-ticket for a booking. The booking must carry
// its travel option.
func Render(b domain.Booking, username string, loc *time.Location) ([]byte, string, error) {
	if b.TravelOption == nil {
		return nil, "", errors.New("ticket: booking has no travel option")
	}
	if loc == nil {
		loc = time.UTC
	}
	o := b.TravelOption

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("E-Ticket #%d", b.ID), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking      : #%d", b.ID),
		fmt.Sprintf("Passenger    : %s", username),
		fmt.Sprintf("Journey      : %s", o.String()),
		fmt.Sprintf("Departure    : %s", o.DateTime.In(loc).Format("02 Jan 2006 15:04 MST")),
		fmt.Sprintf("Seats        : %d", b.Seats),
		fmt.Sprintf("Total price  : %s", domain.FormatCents(b.TotalPriceCents)),
		fmt.Sprintf("Booked on    : %s", b.CreatedAt.In(loc).Format("02 Jan 2006 15:04 MST")),
		fmt.Sprintf("Status       : %s", b.Status),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if b.IsCancelled() {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(200, 0, 0)
		pdf.Cell(0, 8, "CANCELLED - NOT VALID FOR TRAVEL")
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ticket_%d.pdf", b.ID), nil
}

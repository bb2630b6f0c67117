package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/logger"
	"railticket/internal/metrics"
	"railticket/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/multierr"
)

const (
	LayoutRich    = "rich"
	LayoutMinimal = "minimal"
)

// DocumentData is everything the e-ticket can show. Only Booking is required.
type DocumentData struct {
	Booking    models.Booking
	Passengers []models.Passenger
	Ticket     *models.Ticket
}

// Document is a rendered PDF and the layout that produced it.
type Document struct {
	Bytes       []byte
	Filename    string
	Layout      string
	RenderError error
}

// Layout draws the document body onto pdf.
type Layout func(pdf *gofpdf.Fpdf, d DocumentData)

// DocsService renders the e-ticket PDF. The rich layout falls back to a one-page minimal layout
// when it panics or gofpdf reports an error.
type DocsService struct {
	Rich    Layout
	Log     logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Render produces the e-ticket for d.
func (s DocsService) Render(requestID string, d DocumentData) (Document, error) {
	log := logger.OrNop(s.Log)
	filename := fmt.Sprintf("ETICKET_%s.pdf", utils.SafeFilenamePart(d.Booking.BookingCode))

	rich := s.Rich
	if rich == nil {
		rich = richLayout(s.now())
	}
	out, richErr := renderPDF("E-Ticket "+d.Booking.BookingCode, rich, d)
	if richErr == nil {
		s.Metrics.ObserveDocument(LayoutRich)
		utils.LogEvent(log, requestID, "docs", "render", "e-ticket dibuat", "layout", LayoutRich, "bytes", len(out))
		return Document{Bytes: out, Filename: filename, Layout: LayoutRich}, nil
	}

	utils.LogWarn(log, requestID, "docs", "render", "layout utama gagal, memakai layout minimal", "error", richErr)
	out, err := renderPDF("E-Ticket "+d.Booking.BookingCode, minimalLayout(s.now()), d)
	if err != nil {
		return Document{}, domain.WithCode(domain.CodeDocumentRenderFailed, multierr.Combine(richErr, err))
	}
	s.Metrics.ObserveDocument(LayoutMinimal)
	return Document{Bytes: out, Filename: filename, Layout: LayoutMinimal, RenderError: richErr}, nil
}

func renderPDF(title string, layout Layout, d DocumentData) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	layout(pdf, d)
	if pdf.Err() {
		return nil, pdf.Error()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("pdf kosong")
	}
	return buf.Bytes(), nil
}

func richLayout(issued time.Time) Layout {
	return func(pdf *gofpdf.Fpdf, d DocumentData) {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		b := d.Booking

		// header
		pdf.SetFillColor(29, 78, 216)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(0, 14, "E-TICKET KERETA API", "", 1, "C", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, "Diterbitkan "+utils.FormatDateTime(issued), "", 1, "R", false, 0, "")
		pdf.Ln(2)

		info := [][2]string{
			{"Kode Booking", b.BookingCode},
			{"Order ID", b.OrderID},
			{"Status", string(b.Status)},
			{"Status Pembayaran", string(b.PaymentStatus)},
			{"Nama Pemesan", b.ContactName},
			{"Email", b.ContactEmail},
			{"Telepon", b.ContactPhone},
		}
		if d.Ticket != nil && d.Ticket.TicketNumber != "" {
			info = append([][2]string{{"Nomor Tiket", d.Ticket.TicketNumber}}, info...)
		}
		keyValueTable(pdf, tr, "Informasi Booking", info)

		travel := [][2]string{
			{"Kereta", strings.TrimSpace(b.TrainName + " " + b.TrainClass)},
			{"Rute", joinRoute(b.Origin, b.Destination)},
			{"Tanggal", utils.DateOnly(b.DepartureDate)},
			{"Berangkat", utils.TimeHM(b.DepartureTime)},
			{"Tiba", utils.TimeHM(b.ArrivalTime)},
		}
		if b.Transit != nil && b.Transit.Station != "" {
			travel = append(travel,
				[2]string{"Transit", b.Transit.Station},
				[2]string{"Transit Tiba/Berangkat", strings.Trim(utils.TimeHM(b.Transit.Arrival)+" / "+utils.TimeHM(b.Transit.Departure), " /")},
			)
		}
		keyValueTable(pdf, tr, "Informasi Perjalanan", travel)

		if len(b.Segments) > 0 {
			rows := make([][]string, 0, len(b.Segments))
			for i, seg := range b.Segments {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					seg.TrainName,
					joinRoute(seg.Origin, seg.Destination),
					strings.TrimSpace(utils.DateOnly(seg.DepartureDate) + " " + utils.TimeHM(seg.DepartureTime)),
				})
			}
			gridTable(pdf, tr, "Segmen Perjalanan", []string{"No", "Kereta", "Rute", "Berangkat"}, []float64{12, 50, 70, 48}, rows)
		}

		if len(d.Passengers) > 0 {
			rows := make([][]string, 0, len(d.Passengers))
			for i, p := range d.Passengers {
				transit := ""
				if p.Transit != nil {
					transit = p.Transit.Station
				}
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), p.FullName, p.Seat, p.Email, transit})
			}
			gridTable(pdf, tr, "Penumpang", []string{"No", "Nama", "Kursi", "Email", "Turun di"}, []float64{12, 55, 20, 60, 33}, rows)
		}

		if len(b.SelectedSeats) > 0 {
			rows := make([][]string, 0, len(b.SelectedSeats))
			for i, seat := range b.SelectedSeats {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), seat})
			}
			gridTable(pdf, tr, "Kursi", []string{"No", "Kursi"}, []float64{12, 40}, rows)
		}

		f := b.Fare
		payment := [][2]string{{"Tarif Dasar", utils.FormatRupiah(f.BaseFare)}}
		if f.SeatPremium > 0 {
			payment = append(payment, [2]string{"Premium Kursi", utils.FormatRupiah(f.SeatPremium)})
		}
		if f.TransitAdditional > 0 {
			payment = append(payment, [2]string{"Biaya Transit", utils.FormatRupiah(f.TransitAdditional)})
		}
		if f.TransitDiscount > 0 {
			payment = append(payment, [2]string{"Diskon Transit", "- " + utils.FormatRupiah(f.TransitDiscount)})
		}
		if f.PromoDiscount > 0 {
			payment = append(payment, [2]string{"Diskon Promo", "- " + utils.FormatRupiah(f.PromoDiscount)})
		}
		payment = append(payment,
			[2]string{"Biaya Admin", utils.FormatRupiah(f.AdminFee)},
			[2]string{"Asuransi", utils.FormatRupiah(f.InsuranceFee)},
		)
		if f.PaymentFee > 0 {
			payment = append(payment, [2]string{"Biaya Pembayaran", utils.FormatRupiah(f.PaymentFee)})
		}
		payment = append(payment, [2]string{"Total", utils.FormatRupiah(b.TotalAmount)})
		if b.PaymentMethod != "" {
			payment = append(payment, [2]string{"Metode Pembayaran", b.PaymentMethod})
		}
		keyValueTable(pdf, tr, "Ringkasan Pembayaran", payment)

		// QR placeholder
		pdf.Ln(2)
		x, y := pdf.GetXY()
		pdf.SetDrawColor(120, 120, 120)
		pdf.Rect(x, y, 32, 32, "D")
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(x, y+13)
		pdf.CellFormat(32, 5, "QR "+b.BookingCode, "", 0, "C", false, 0, "")
		pdf.SetXY(x+38, y)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("Tunjukkan e-ticket ini beserta kartu identitas yang sesuai saat boarding. "+
			"Perubahan jadwal dan pembatalan mengikuti ketentuan operator kereta. "+
			"E-ticket tidak berlaku apabila pembayaran belum dikonfirmasi."), "", "L", false)
		pdf.SetY(y + 36)
	}
}

func minimalLayout(issued time.Time) Layout {
	return func(pdf *gofpdf.Fpdf, d DocumentData) {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		b := d.Booking
		name := b.ContactName
		if name == "" && len(d.Passengers) > 0 {
			name = d.Passengers[0].FullName
		}

		pdf.SetFont("Helvetica", "B", 16)
		pdf.Cell(0, 10, "E-TICKET")
		pdf.Ln(12)
		pdf.SetFont("Helvetica", "", 12)
		lines := []string{
			"Kode Booking : " + safe(b.BookingCode),
			"Nama         : " + safe(name),
			"Rute         : " + safe(joinRoute(b.Origin, b.Destination)),
			"Tanggal/Jam  : " + safe(strings.TrimSpace(utils.DateOnly(b.DepartureDate)+" "+utils.TimeHM(b.DepartureTime))),
			"Total        : " + utils.FormatRupiah(b.TotalAmount),
		}
		for _, l := range lines {
			pdf.Cell(0, 7, tr(l))
			pdf.Ln(7)
		}
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, "Diterbitkan "+utils.FormatDateTime(issued))
	}
}

func keyValueTable(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows [][2]string) {
	filtered := rows[:0:0]
	for _, r := range rows {
		if strings.TrimSpace(r[1]) != "" {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return
	}
	sectionTitle(pdf, tr, title)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range filtered {
		pdf.SetFillColor(243, 244, 246)
		pdf.CellFormat(55, 7, tr(r[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(0, 7, tr(r[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func gridTable(pdf *gofpdf.Fpdf, tr func(string) string, title string, header []string, widths []float64, rows [][]string) {
	sectionTitle(pdf, tr, title)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(229, 231, 235)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(29, 78, 216)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func joinRoute(from, to string) string {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return ""
	}
	return safe(from) + " -> " + safe(to)
}

func safe(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return strings.TrimSpace(v)
}

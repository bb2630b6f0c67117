package mail

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// TicketSummary is the structured block embedded in the ticket email.
type TicketSummary struct {
	TicketNumber  string
	BookingCode   string
	PassengerName string
	TrainName     string
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
	ArrivalTime   string
	Seat          string
	Status        string
	Total         string
}

const ticketText = `Halo {{.PassengerName}},

Terima kasih telah memesan tiket kereta. E-ticket terlampir dalam email ini.

Nomor Tiket   : {{.TicketNumber}}
Kode Booking  : {{.BookingCode}}
Kereta        : {{.TrainName}}
Rute          : {{.Origin}} - {{.Destination}}
Tanggal       : {{.DepartureDate}}
Berangkat     : {{.DepartureTime}}{{if .ArrivalTime}}
Tiba          : {{.ArrivalTime}}{{end}}
Kursi         : {{if .Seat}}{{.Seat}}{{else}}-{{end}}
Status        : {{.Status}}
Total         : {{.Total}}

Tunjukkan e-ticket dan identitas yang sesuai saat boarding.
`

const ticketHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2 style="color: #1d4ed8;">E-Ticket Kereta</h2>
  <p>Halo {{.PassengerName}},</p>
  <p>Terima kasih telah memesan tiket kereta. E-ticket terlampir dalam email ini.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Nomor Tiket</b></td><td>{{.TicketNumber}}</td></tr>
    <tr><td><b>Kode Booking</b></td><td>{{.BookingCode}}</td></tr>
    <tr><td><b>Kereta</b></td><td>{{.TrainName}}</td></tr>
    <tr><td><b>Rute</b></td><td>{{.Origin}} &rarr; {{.Destination}}</td></tr>
    <tr><td><b>Tanggal</b></td><td>{{.DepartureDate}}</td></tr>
    <tr><td><b>Berangkat</b></td><td>{{.DepartureTime}}</td></tr>
    {{if .ArrivalTime}}<tr><td><b>Tiba</b></td><td>{{.ArrivalTime}}</td></tr>{{end}}
    <tr><td><b>Kursi</b></td><td>{{if .Seat}}{{.Seat}}{{else}}-{{end}}</td></tr>
    <tr><td><b>Status</b></td><td>{{.Status}}</td></tr>
    <tr><td><b>Total</b></td><td>{{.Total}}</td></tr>
  </table>
  <p style="font-size: 12px; color: #6b7280;">Tunjukkan e-ticket dan identitas yang sesuai saat boarding.</p>
</body>
</html>
`

var (
	ticketTextTmpl = texttemplate.Must(texttemplate.New("ticket.txt").Parse(ticketText))
	ticketHTMLTmpl = htmltemplate.Must(htmltemplate.New("ticket.html").Parse(ticketHTML))
)

// RenderTicket returns the text and HTML bodies of the ticket email.
func RenderTicket(s TicketSummary) (text string, html string, err error) {
	var tb, hb bytes.Buffer
	if err = ticketTextTmpl.Execute(&tb, s); err != nil {
		return "", "", err
	}
	if err = ticketHTMLTmpl.Execute(&hb, s); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}

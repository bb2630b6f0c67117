package models

// Passenger is a persisted passenger row owned by one booking.
type Passenger struct {
	ID          string   `json:"id"`
	BookingID   string   `json:"bookingId"`
	BookingCode string   `json:"bookingCode,omitempty"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Seat        string   `json:"seat,omitempty"`
	SegmentID   string   `json:"segmentId,omitempty"`
	Transit     *Transit `json:"transit,omitempty"`
}

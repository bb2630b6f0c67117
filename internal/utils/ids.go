package utils

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"railticket/internal/domain/models"

	"github.com/google/uuid"
)

const (
	PrefixBooking = "BK"
	PrefixOrder   = "ORD"
	PrefixTicket  = "TKT"
)

// GeneratedIDPattern matches identifiers produced by IDGenerator.
var GeneratedIDPattern = regexp.MustCompile(`^[A-Z]+-[0-9]+-[0-9A-Z]+$`)

// IDGenerator builds <PREFIX>-<millis>-<suffix> identifiers. The millis part never
// repeats or goes backwards within one generator, even if the clock does.
// Uniqueness across processes is enforced by the storage layer, not here.
type IDGenerator struct {
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{Now: time.Now}
}

// Generate returns the identifiers for one submission. Non-empty caller values are kept verbatim.
func (g *IDGenerator) Generate(bookingCode, orderID, ticketNumber string) models.Identifiers {
	out := models.Identifiers{
		BookingID:    uuid.NewString(),
		BookingCode:  strings.TrimSpace(bookingCode),
		OrderID:      strings.TrimSpace(orderID),
		TicketNumber: strings.TrimSpace(ticketNumber),
	}
	if out.BookingCode == "" {
		out.BookingCode = g.New(PrefixBooking)
	}
	if out.OrderID == "" {
		out.OrderID = g.New(PrefixOrder)
	}
	if out.TicketNumber == "" {
		out.TicketNumber = g.New(PrefixTicket)
	}
	return out
}

// New returns one fresh identifier with the given prefix.
func (g *IDGenerator) New(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, g.tick(), randomSuffix())
}

func (g *IDGenerator) tick() int64 {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	ms := now().UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

func randomSuffix() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}

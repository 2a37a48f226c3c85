package parking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID           string       `json:"ticket_id"`
	SpotID       string       `json:"spot_id"`
	LicensePlate string       `json:"license_plate"`
	Class        VehicleClass `json:"vehicle_type"`
	EntryTime    time.Time    `json:"entry_time"`
	Fee          float64      `json:"fee"`
	Settled      bool         `json:"settled"`
	SettledAt    time.Time    `json:"settled_at,omitzero"`
}

// TicketStore keeps every ticket ever minted. Like SpotPool it relies on the
// engine for locking.
type TicketStore struct {
	tickets map[string]*Ticket
	order   []string
	newID   func() string
}

func NewTicketStore() *TicketStore {
	return &TicketStore{
		tickets: make(map[string]*Ticket),
		newID:   uuid.NewString,
	}
}

func (s *TicketStore) Mint(spotID, holder string, class VehicleClass, entryTime time.Time) Ticket {
	ticket := &Ticket{
		ID:           s.newID(),
		SpotID:       spotID,
		LicensePlate: holder,
		Class:        class,
		EntryTime:    entryTime,
	}

	s.tickets[ticket.ID] = ticket
	s.order = append(s.order, ticket.ID)
	return *ticket
}

func (s *TicketStore) Get(ticketID string) (Ticket, error) {
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
	}
	return *ticket, nil
}

func (s *TicketStore) Settle(ticketID string, fee float64, settledAt time.Time) (Ticket, error) {
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
	}
	if ticket.Settled {
		return Ticket{}, fmt.Errorf("%w: ticket %s settled at %s", ErrAlreadySettled, ticketID, ticket.SettledAt.Format(time.RFC3339))
	}

	ticket.Fee = fee
	ticket.Settled = true
	ticket.SettledAt = settledAt
	return *ticket, nil
}

// List returns copies of all tickets in mint order.
func (s *TicketStore) List() []Ticket {
	tickets := make([]Ticket, 0, len(s.order))
	for _, id := range s.order {
		tickets = append(tickets, *s.tickets[id])
	}
	return tickets
}

func (s *TicketStore) OpenCount() int {
	open := 0
	for _, ticket := range s.tickets {
		if !ticket.Settled {
			open++
		}
	}
	return open
}

func (s *TicketStore) Revenue() float64 {
	total := 0.0
	for _, ticket := range s.tickets {
		if ticket.Settled {
			total += ticket.Fee
		}
	}
	return total
}

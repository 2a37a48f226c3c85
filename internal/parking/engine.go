package parking

import (
	"fmt"
	"sync"

	"github.com/facebookgo/clock"
)

type ClassStatus struct {
	Class     VehicleClass `json:"vehicle_type"`
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
}

type Status struct {
	Capacity    int           `json:"capacity"`
	Occupied    int           `json:"occupied"`
	Available   int           `json:"available"`
	OpenTickets int           `json:"open_tickets"`
	Revenue     float64       `json:"revenue"`
	Classes     []ClassStatus `json:"classes"`
	Spots       []Spot        `json:"spots"`
}

func (s Status) Class(class VehicleClass) ClassStatus {
	for _, cs := range s.Classes {
		if cs.Class == class {
			return cs
		}
	}
	return ClassStatus{Class: class}
}

// Engine hands out spots and settles tickets. One mutex covers the spot pool
// and the ticket store together, so a spot is never seen free while an open
// ticket references it, or occupied without one.
type Engine struct {
	mu      sync.Mutex
	pool    *SpotPool
	tickets *TicketStore
	rate    float64
	clock   clock.Clock
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func NewEngine(inventory Inventory, ratePerHour float64, opts ...Option) (*Engine, error) {
	if err := inventory.Validate(); err != nil {
		return nil, err
	}
	if !ValidRate(ratePerHour) {
		return nil, fmt.Errorf("%w: rate per hour must be a positive finite number, got %v", ErrInvalidInput, ratePerHour)
	}

	e := &Engine{
		pool:    NewSpotPool(inventory),
		tickets: NewTicketStore(),
		rate:    ratePerHour,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Enter(class VehicleClass, licensePlate string) (Ticket, error) {
	if !class.Valid() {
		return Ticket{}, fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidInput, class)
	}
	if licensePlate == "" {
		return Ticket{}, fmt.Errorf("%w: license plate is required", ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	spot, err := e.pool.FindFree(class)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: no %s spot available", ErrCapacityExceeded, class)
	}

	if err := e.pool.Occupy(spot.ID, licensePlate); err != nil {
		return Ticket{}, fmt.Errorf("occupy spot %s: %w", spot.ID, err)
	}

	return e.tickets.Mint(spot.ID, licensePlate, class, e.clock.Now()), nil
}

func (e *Engine) Exit(ticketID string) (Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, err := e.tickets.Get(ticketID)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %s", ErrInvalidTicket, ticketID)
	}
	if ticket.Settled {
		return Ticket{}, fmt.Errorf("%w: %s", ErrAlreadySettled, ticketID)
	}

	spot, err := e.pool.Get(ticket.SpotID)
	if err != nil {
		return Ticket{}, fmt.Errorf("ticket %s references missing spot: %w", ticketID, err)
	}
	if !spot.Occupied || spot.Holder != ticket.LicensePlate {
		return Ticket{}, fmt.Errorf("%w: open ticket %s but spot %s holder is %q", ErrConflict, ticketID, spot.ID, spot.Holder)
	}

	now := e.clock.Now()
	fee := CalculateFee(now.Sub(ticket.EntryTime), e.rate)

	if err := e.pool.Release(spot.ID); err != nil {
		return Ticket{}, fmt.Errorf("release spot %s: %w", spot.ID, err)
	}

	settled, err := e.tickets.Settle(ticketID, fee, now)
	if err != nil {
		// Put the spot back so the pair stays consistent.
		if occupyErr := e.pool.Occupy(spot.ID, spot.Holder); occupyErr != nil {
			return Ticket{}, fmt.Errorf("settle ticket %s: %w (restore spot: %v)", ticketID, err, occupyErr)
		}
		return Ticket{}, fmt.Errorf("settle ticket %s: %w", ticketID, err)
	}

	return settled, nil
}

func (e *Engine) Ticket(ticketID string) (Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, err := e.tickets.Get(ticketID)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %s", ErrInvalidTicket, ticketID)
	}
	return ticket, nil
}

func (e *Engine) Tickets() []Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tickets.List()
}

// FindByHolder returns the first occupied spot held by licensePlate.
func (e *Engine) FindByHolder(licensePlate string) (Spot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	spot, err := e.pool.FindByHolder(licensePlate)
	if err != nil {
		return Spot{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, licensePlate)
	}
	return spot, nil
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	spots := e.pool.Snapshot()
	status := Status{
		Capacity:    len(spots),
		OpenTickets: e.tickets.OpenCount(),
		Revenue:     e.tickets.Revenue(),
		Spots:       spots,
	}

	for _, class := range VehicleClasses {
		cs := ClassStatus{Class: class}
		for _, spot := range spots {
			if spot.Class != class {
				continue
			}
			cs.Capacity++
			if spot.Occupied {
				cs.Occupied++
			}
		}
		cs.Available = cs.Capacity - cs.Occupied
		status.Occupied += cs.Occupied
		status.Classes = append(status.Classes, cs)
	}
	status.Available = status.Capacity - status.Occupied

	return status
}

func (e *Engine) Rate() float64 {
	return e.rate
}

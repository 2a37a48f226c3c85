package parking

import (
	"fmt"
	"strconv"
)

type Inventory struct {
	TwoWheel  int
	FourWheel int
	Oversize  int
}

func (i Inventory) Count(class VehicleClass) int {
	switch class {
	case TwoWheel:
		return i.TwoWheel
	case FourWheel:
		return i.FourWheel
	case Oversize:
		return i.Oversize
	default:
		return 0
	}
}

func (i Inventory) Total() int {
	return i.TwoWheel + i.FourWheel + i.Oversize
}

func (i Inventory) Validate() error {
	for _, class := range VehicleClasses {
		if i.Count(class) < 0 {
			return fmt.Errorf("%w: negative spot count for %s", ErrInvalidInput, class)
		}
	}
	if i.Total() == 0 {
		return fmt.Errorf("%w: inventory has no spots", ErrInvalidInput)
	}
	return nil
}

// SpotPool holds the fixed spot inventory. It is not safe for concurrent use;
// Engine serializes access to it.
type SpotPool struct {
	spots []*Spot
	byID  map[string]*Spot
}

func NewSpotPool(inventory Inventory) *SpotPool {
	pool := &SpotPool{
		spots: make([]*Spot, 0, inventory.Total()),
		byID:  make(map[string]*Spot, inventory.Total()),
	}

	for _, class := range VehicleClasses {
		for n := 1; n <= inventory.Count(class); n++ {
			spot := NewSpot(class.spotPrefix()+strconv.Itoa(n), class)
			pool.spots = append(pool.spots, spot)
			pool.byID[spot.ID] = spot
		}
	}

	return pool
}

// FindFree returns the first free spot of class in inventory order.
func (p *SpotPool) FindFree(class VehicleClass) (Spot, error) {
	for _, spot := range p.spots {
		if spot.Class == class && !spot.Occupied {
			return *spot, nil
		}
	}
	return Spot{}, fmt.Errorf("%w: no free %s spot", ErrNotFound, class)
}

func (p *SpotPool) Occupy(spotID, holder string) error {
	if holder == "" {
		return fmt.Errorf("%w: empty holder for spot %s", ErrInvalidInput, spotID)
	}

	spot, ok := p.byID[spotID]
	if !ok {
		return fmt.Errorf("%w: spot %s", ErrNotFound, spotID)
	}
	if spot.Occupied {
		return fmt.Errorf("%w: spot %s already held by %s", ErrConflict, spotID, spot.Holder)
	}

	spot.Park(holder)
	return nil
}

// Release frees a spot. Releasing a free spot is a no-op.
func (p *SpotPool) Release(spotID string) error {
	spot, ok := p.byID[spotID]
	if !ok {
		return fmt.Errorf("%w: spot %s", ErrNotFound, spotID)
	}

	spot.Leave()
	return nil
}

func (p *SpotPool) Get(spotID string) (Spot, error) {
	spot, ok := p.byID[spotID]
	if !ok {
		return Spot{}, fmt.Errorf("%w: spot %s", ErrNotFound, spotID)
	}
	return *spot, nil
}

func (p *SpotPool) FindByHolder(holder string) (Spot, error) {
	for _, spot := range p.spots {
		if spot.Occupied && spot.Holder == holder {
			return *spot, nil
		}
	}
	return Spot{}, fmt.Errorf("%w: no spot held by %s", ErrNotFound, holder)
}

// Snapshot copies every spot in inventory order.
func (p *SpotPool) Snapshot() []Spot {
	spots := make([]Spot, len(p.spots))
	for i, spot := range p.spots {
		spots[i] = *spot
	}
	return spots
}

func (p *SpotPool) Capacity() int {
	return len(p.spots)
}

package parking

type Spot struct {
	ID       string       `json:"id"`
	Class    VehicleClass `json:"class"`
	Occupied bool         `json:"occupied"`
	Holder   string       `json:"holder,omitempty"`
}

func NewSpot(id string, class VehicleClass) *Spot {
	return &Spot{
		ID:    id,
		Class: class,
	}
}

func (s *Spot) Park(holder string) {
	s.Holder = holder
	s.Occupied = true
}

func (s *Spot) Leave() string {
	holder := s.Holder
	s.Holder = ""
	s.Occupied = false
	return holder
}

package parking

import (
	"fmt"
	"strings"
)

type VehicleClass string

const (
	TwoWheel  VehicleClass = "TWO_WHEEL"
	FourWheel VehicleClass = "FOUR_WHEEL"
	Oversize  VehicleClass = "OVERSIZE"
)

// VehicleClasses lists every class in inventory order.
var VehicleClasses = []VehicleClass{TwoWheel, FourWheel, Oversize}

var classAliases = map[string]VehicleClass{
	"TWO_WHEEL":  TwoWheel,
	"BIKE":       TwoWheel,
	"FOUR_WHEEL": FourWheel,
	"CAR":        FourWheel,
	"OVERSIZE":   Oversize,
	"LARGE":      Oversize,
	"TRUCK":      Oversize,
}

func ParseVehicleClass(s string) (VehicleClass, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if class, ok := classAliases[key]; ok {
		return class, nil
	}
	return "", fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidInput, s)
}

func (c VehicleClass) String() string {
	return string(c)
}

func (c VehicleClass) Valid() bool {
	switch c {
	case TwoWheel, FourWheel, Oversize:
		return true
	default:
		return false
	}
}

func (c VehicleClass) spotPrefix() string {
	switch c {
	case TwoWheel:
		return "S-B-"
	case FourWheel:
		return "S-C-"
	default:
		return "S-L-"
	}
}

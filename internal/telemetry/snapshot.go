package telemetry

import (
	"time"

	"github.com/simwidget/overlay/pkg/wire"
)

// Snapshot is one immutable view of the simulator state. The render thread
// reads whole snapshots; fields are never mutated in place.
type Snapshot struct {
	Altitude      float64 // feet
	Airspeed      float64 // knots
	Heading       float64 // degrees magnetic
	VerticalSpeed float64 // feet per minute
	Throttle      float64 // percent, 0-100
	EngineRunning bool
	FuelQuantity  float64 // gallons
	FuelCapacity  float64 // gallons

	Connected  bool
	ReceivedAt time.Time
}

// FuelFraction returns remaining fuel as 0..1, or 0 when capacity is unknown.
func (s Snapshot) FuelFraction() float64 {
	if s.FuelCapacity <= 0 {
		return 0
	}
	f := s.FuelQuantity / s.FuelCapacity
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// apply merges a simvars batch into a copy of the snapshot. Variables absent
// from the batch keep their previous values.
func (s Snapshot) apply(data map[string]wire.Simvar, now time.Time) Snapshot {
	next := s
	for name, v := range data {
		switch name {
		case wire.VarAltitude:
			next.Altitude = v.Value
		case wire.VarAirspeed:
			next.Airspeed = v.Value
		case wire.VarHeading:
			next.Heading = v.Value
		case wire.VarVerticalSpeed:
			next.VerticalSpeed = v.Value
		case wire.VarThrottle:
			next.Throttle = v.Value
		case wire.VarEngineRunning:
			next.EngineRunning = v.Value != 0
		case wire.VarFuelQuantity:
			next.FuelQuantity = v.Value
		case wire.VarFuelCapacity:
			next.FuelCapacity = v.Value
		}
	}
	next.Connected = true
	next.ReceivedAt = now
	return next
}

package domain

// CoordinatePrecision is the number of decimal places kept on resolved
// latitudes and longitudes.
const CoordinatePrecision = 8

// MissedApproachAltitude is the altitude sentinel that marks the missed
// approach point of a procedure.
const MissedApproachAltitude = "MAP"

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// FixRef is an optional reference to a fix together with its coordinate
// pair, holding the column values as stored on the leg row. Only NULL counts
// as absent; whatever else the row holds is written out unchanged.
type FixRef struct {
	ID  Value
	Lat Value
	Lon Value
}

// HasCoordinates reports whether either half of the coordinate pair is set.
func (f FixRef) HasCoordinates() bool {
	return !f.Lat.IsNull() || !f.Lon.IsNull()
}

// IsEmpty reports whether the reference and both coordinates are absent.
func (f FixRef) IsEmpty() bool {
	return f.ID.IsNull() && !f.HasCoordinates()
}

func (f *FixRef) setCoordinate(c Coordinate) {
	f.Lat = Real(c.Lat)
	f.Lon = Real(c.Lon)
}

// Leg is one row of TerminalLegs, mutated in place by backfill, extension
// merge and flag derivation.
type Leg struct {
	ID         int64
	TerminalID int64
	Type       Value
	Transition Value
	TrackCode  Value
	Waypoint   FixRef
	TurnDir    Value
	Navaid     FixRef
	NavBearing Value
	NavDist    Value
	Course     Value
	Distance   Value
	Altitude   Value
	Vnav       Value
	Center     FixRef

	// Merged from TerminalLegsEx.
	FlyOver    Value
	SpeedLimit *int64

	// Derived per procedure.
	FinalApproachFix    bool
	MissedApproachPoint bool
}

// LegExtension is the optional TerminalLegsEx companion of a leg.
type LegExtension struct {
	LegID      int64
	FlyOver    Value
	SpeedLimit Value
}

// Procedure is the normalized output of one terminal procedure, in source
// leg order.
type Procedure struct {
	TerminalID int64
	Legs       []NormalizedLeg
}

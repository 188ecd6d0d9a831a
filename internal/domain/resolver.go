package domain

// EntityClass selects the reference table a lookup goes to.
type EntityClass int

const (
	EntityWaypoint EntityClass = iota
	EntityRunway
)

func (c EntityClass) String() string {
	switch c {
	case EntityWaypoint:
		return "waypoint"
	case EntityRunway:
		return "runway"
	default:
		return "unknown"
	}
}

// Resolver looks up reference coordinates for leg backfill.
type Resolver interface {
	// Resolve returns the coordinate of the waypoint or runway with the
	// given id, rounded to CoordinatePrecision.
	Resolve(class EntityClass, id int64) (Coordinate, bool)

	// TerminalRunway returns the runway id a terminal procedure serves.
	TerminalRunway(terminalID int64) (int64, bool)
}

// ReferenceTables holds the auxiliary lookup tables loaded once per run.
// It is never mutated after construction and is safe for concurrent reads.
type ReferenceTables struct {
	waypoints       map[int64]Coordinate
	runways         map[int64]Coordinate
	terminalRunways map[int64]int64
}

// NewReferenceTables takes ownership of the given maps. Coordinates are
// rounded here so every lookup returns the same representation.
func NewReferenceTables(waypoints, runways map[int64]Coordinate, terminalRunways map[int64]int64) *ReferenceTables {
	return &ReferenceTables{
		waypoints:       roundAll(waypoints),
		runways:         roundAll(runways),
		terminalRunways: terminalRunways,
	}
}

func roundAll(m map[int64]Coordinate) map[int64]Coordinate {
	out := make(map[int64]Coordinate, len(m))
	for id, c := range m {
		out[id] = Coordinate{Lat: RoundCoordinate(c.Lat), Lon: RoundCoordinate(c.Lon)}
	}
	return out
}

func (r *ReferenceTables) Resolve(class EntityClass, id int64) (Coordinate, bool) {
	var c Coordinate
	var ok bool
	switch class {
	case EntityWaypoint:
		c, ok = r.waypoints[id]
	case EntityRunway:
		c, ok = r.runways[id]
	}
	return c, ok
}

func (r *ReferenceTables) TerminalRunway(terminalID int64) (int64, bool) {
	id, ok := r.terminalRunways[terminalID]
	return id, ok
}

// Len returns the number of waypoints, runways and terminals loaded.
func (r *ReferenceTables) Len() (waypoints, runways, terminals int) {
	return len(r.waypoints), len(r.runways), len(r.terminalRunways)
}

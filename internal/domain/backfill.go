package domain

// BackfillRule identifies which coordinate backfill rule fired for a leg.
type BackfillRule int

const (
	RuleNone BackfillRule = iota
	RuleMissedApproachRunway
	RuleWaypoint
	RuleCenterFix
	RuleNavaid
)

func (r BackfillRule) String() string {
	switch r {
	case RuleMissedApproachRunway:
		return "missed_approach_runway"
	case RuleWaypoint:
		return "waypoint"
	case RuleCenterFix:
		return "center_fix"
	case RuleNavaid:
		return "navaid"
	default:
		return "none"
	}
}

// BackfillResult reports the rule that fired and whether its lookup found
// a coordinate.
type BackfillResult struct {
	Rule     BackfillRule
	Resolved bool
}

// Backfill fills in missing coordinates on the leg. At most one rule fires;
// rules are tried in priority order and the first whose precondition holds
// wins even if its lookup finds nothing:
//
//  1. no waypoint id or coordinates and altitude "MAP": the procedure's runway
//  2. waypoint id without coordinates: waypoint table
//  3. center fix id without coordinates: waypoint table
//  4. navaid id without coordinates: waypoint table
//
// A failed lookup leaves the coordinates unset.
func Backfill(leg *Leg, refs Resolver) BackfillResult {
	switch {
	case leg.Waypoint.IsEmpty() && leg.Altitude.IsText(MissedApproachAltitude):
		res := BackfillResult{Rule: RuleMissedApproachRunway}
		rwy, ok := refs.TerminalRunway(leg.TerminalID)
		if !ok {
			return res
		}
		res.Resolved = fill(&leg.Waypoint, refs, EntityRunway, rwy)
		return res
	case needsCoordinates(leg.Waypoint):
		return BackfillResult{Rule: RuleWaypoint, Resolved: fillByRef(&leg.Waypoint, refs)}
	case needsCoordinates(leg.Center):
		return BackfillResult{Rule: RuleCenterFix, Resolved: fillByRef(&leg.Center, refs)}
	case needsCoordinates(leg.Navaid):
		return BackfillResult{Rule: RuleNavaid, Resolved: fillByRef(&leg.Navaid, refs)}
	}
	return BackfillResult{Rule: RuleNone}
}

func needsCoordinates(f FixRef) bool {
	return !f.ID.IsNull() && !f.HasCoordinates()
}

// fillByRef looks the fix's own id up in the waypoint table. Ids that are
// not numbers (text, or reals with a fraction) match no key.
func fillByRef(f *FixRef, refs Resolver) bool {
	id, ok := referenceKey(f.ID)
	if !ok {
		return false
	}
	return fill(f, refs, EntityWaypoint, id)
}

func referenceKey(v Value) (int64, bool) {
	switch v.Any().(type) {
	case int64, float64:
		return v.Int64()
	}
	return 0, false
}

func fill(f *FixRef, refs Resolver, class EntityClass, id int64) bool {
	c, ok := refs.Resolve(class, id)
	if !ok {
		return false
	}
	f.setCoordinate(c)
	return true
}

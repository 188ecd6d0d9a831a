package domain

// ProcedureResult is the output of normalizing one procedure along with
// counters for observability.
type ProcedureResult struct {
	Procedure Procedure
	Backfills map[BackfillRule]BackfillCount
	FAFs      int
	MAPs      int
}

// BackfillCount tallies lookups for one backfill rule.
type BackfillCount struct {
	Resolved   int
	Unresolved int
}

// Normalizer runs the per-procedure passes against reference data that is
// loaded once and only read afterwards.
type Normalizer struct {
	refs       Resolver
	extensions map[int64]LegExtension
}

// NewNormalizer creates a Normalizer. extensions is keyed by leg id and may
// be nil.
func NewNormalizer(refs Resolver, extensions map[int64]LegExtension) *Normalizer {
	return &Normalizer{refs: refs, extensions: extensions}
}

// Normalize processes the complete, source-ordered leg list of one
// procedure. The legs are modified in place and never reordered.
func (n *Normalizer) Normalize(terminalID int64, legs []Leg) ProcedureResult {
	res := ProcedureResult{
		Procedure: Procedure{TerminalID: terminalID, Legs: make([]NormalizedLeg, 0, len(legs))},
		Backfills: make(map[BackfillRule]BackfillCount),
	}

	for i := range legs {
		bf := Backfill(&legs[i], n.refs)
		if bf.Rule != RuleNone {
			c := res.Backfills[bf.Rule]
			if bf.Resolved {
				c.Resolved++
			} else {
				c.Unresolved++
			}
			res.Backfills[bf.Rule] = c
		}

		ext, ok := n.extensions[legs[i].ID]
		MergeExtension(&legs[i], ext, ok)
	}

	// Flags need the whole list: the FAF test looks behind and ahead.
	DeriveFlags(legs)

	for i := range legs {
		if legs[i].FinalApproachFix {
			res.FAFs++
		}
		if legs[i].MissedApproachPoint {
			res.MAPs++
		}
		res.Procedure.Legs = append(res.Procedure.Legs, Serialize(legs[i]))
	}
	return res
}

// ProcedureLegs is the source-ordered leg list of one terminal procedure.
type ProcedureLegs struct {
	TerminalID int64
	Legs       []Leg
}

// GroupProcedures splits a leg stream into procedures keyed by TerminalID.
// Procedures appear in order of their first leg; legs keep stream order.
func GroupProcedures(legs []Leg) []ProcedureLegs {
	index := make(map[int64]int)
	var out []ProcedureLegs
	for _, leg := range legs {
		i, ok := index[leg.TerminalID]
		if !ok {
			i = len(out)
			index[leg.TerminalID] = i
			out = append(out, ProcedureLegs{TerminalID: leg.TerminalID})
		}
		out[i].Legs = append(out[i].Legs, leg)
	}
	return out
}

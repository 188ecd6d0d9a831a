package domain

// MergeExtension copies the fly-over flag and speed limit from the leg's
// TerminalLegsEx row. When found is false both fields are cleared.
//
// A fly-over value of 1 becomes -1 (the output's "true"); anything else,
// null included, passes through. The speed limit is truncated to an integer
// and dropped when it is null or unreadable.
func MergeExtension(leg *Leg, ext LegExtension, found bool) {
	leg.FlyOver = Null()
	leg.SpeedLimit = nil
	if !found {
		return
	}

	if ext.FlyOver.IsOne() {
		leg.FlyOver = Int(legacyTrue)
	} else {
		leg.FlyOver = ext.FlyOver
	}

	if n, ok := ext.SpeedLimit.Truncate(); ok {
		leg.SpeedLimit = &n
	}
}

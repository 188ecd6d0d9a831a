package domain

import (
	"strconv"
	"strings"
)

// FinalApproachAngle is the vertical path angle, in degrees, that separates
// the intermediate segment from the final approach.
const FinalApproachAngle = 2.5

// DeriveFlags sets MissedApproachPoint and FinalApproachFix on every leg of
// one procedure. legs must be the complete procedure in source order.
func DeriveFlags(legs []Leg) {
	for i := range legs {
		legs[i].MissedApproachPoint = legs[i].Altitude.IsText(MissedApproachAltitude)
		legs[i].FinalApproachFix = IsFinalApproachFix(legs, i)
	}
}

// IsFinalApproachFix reports whether the interior leg at position i is a
// final approach fix: no leg from i back to the first carries a vertical
// angle of FinalApproachAngle or more (or an unreadable one), and the next
// leg descends steeper than FinalApproachAngle. The first and last legs are
// never candidates. Each position runs its own backward scan; nothing
// else limits the number of fixes per procedure.
func IsFinalApproachFix(legs []Leg, i int) bool {
	if i <= 0 || i >= len(legs)-1 {
		return false
	}
	for j := i; j >= 0; j-- {
		v := legs[j].Vnav
		if v.IsNull() {
			continue
		}
		angle, ok := parseAngle(v)
		if !ok || angle >= FinalApproachAngle {
			return false
		}
	}
	next, ok := parseAngle(legs[i+1].Vnav)
	return ok && next > FinalApproachAngle
}

// parseAngle accepts unsigned decimals with at most one point, as written
// in the source ("3", "3.0", ".5", "3."). Signs, exponents and any other
// text are rejected.
func parseAngle(v Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	s := v.literal()
	if !isDigits(strings.Replace(s, ".", "", 1)) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

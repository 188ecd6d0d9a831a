package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func legsWithVnav(vals ...Value) []Leg {
	legs := make([]Leg, len(vals))
	for i, v := range vals {
		legs[i] = Leg{ID: int64(i + 1), TerminalID: testTerminalID, Vnav: v}
	}
	return legs
}

func fafPositions(legs []Leg) []int {
	var out []int
	for i := range legs {
		if legs[i].FinalApproachFix {
			out = append(out, i)
		}
	}
	return out
}

func TestDeriveFlags_FinalApproachFix(t *testing.T) {
	tests := []struct {
		name     string
		vnav     []Value
		expected []int
	}{
		{
			name:     "fix before first steep angle",
			vnav:     []Value{Null(), Real(1.0), Null(), Real(3.0)},
			expected: []int{2},
		},
		{
			name:     "earlier angle at threshold invalidates",
			vnav:     []Value{Null(), Real(2.6), Null(), Real(3.0)},
			expected: nil,
		},
		{
			name:     "exactly 2.5 behind invalidates",
			vnav:     []Value{Null(), Real(2.5), Null(), Real(3.0)},
			expected: nil,
		},
		{
			name:     "next angle must exceed threshold strictly",
			vnav:     []Value{Null(), Null(), Real(2.5)},
			expected: nil,
		},
		{
			name:     "unreadable angle behind invalidates",
			vnav:     []Value{Str("GS"), Null(), Real(3.0)},
			expected: nil,
		},
		{
			name:     "negative angle behind invalidates",
			vnav:     []Value{Null(), Real(-3.0), Null(), Real(3.0)},
			expected: nil,
		},
		{
			name:     "candidate's own angle is checked",
			vnav:     []Value{Null(), Real(2.8), Real(3.0)},
			expected: nil,
		},
		{
			name:     "text angles are parsed",
			vnav:     []Value{Null(), Str("1.5"), Str("3.10")},
			expected: []int{1},
		},
		{
			name:     "integer angles are parsed",
			vnav:     []Value{Null(), Null(), Int(3), Null()},
			expected: []int{1},
		},
		{
			name:     "unreadable next angle",
			vnav:     []Value{Null(), Null(), Str("3.0.0")},
			expected: nil,
		},
		{
			name:     "steep leg behind blocks later candidates",
			vnav:     []Value{Null(), Null(), Real(3.0), Null(), Real(3.0)},
			expected: []int{1},
		},
		{
			name:     "two legs have no interior",
			vnav:     []Value{Null(), Real(3.0)},
			expected: nil,
		},
		{
			name:     "all null",
			vnav:     []Value{Null(), Null(), Null(), Null()},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legs := legsWithVnav(tt.vnav...)
			DeriveFlags(legs)
			assert.Equal(t, tt.expected, fafPositions(legs))
		})
	}
}

func TestDeriveFlags_OscillatingAngles(t *testing.T) {
	// Every position is scanned on its own. A qualifying leg's successor is
	// steeper than 2.5, which then sits behind every later candidate.
	legs := legsWithVnav(Null(), Real(1.0), Real(2.6), Real(1.0), Real(3.0), Real(0.5), Real(3.5))
	DeriveFlags(legs)
	assert.Equal(t, []int{1}, fafPositions(legs))
}

func TestIsFinalApproachFix_Boundaries(t *testing.T) {
	legs := legsWithVnav(Null(), Null(), Real(3.0))
	assert.False(t, IsFinalApproachFix(legs, 0))
	assert.True(t, IsFinalApproachFix(legs, 1))
	assert.False(t, IsFinalApproachFix(legs, 2))
	assert.False(t, IsFinalApproachFix(legs, -1))
	assert.False(t, IsFinalApproachFix(legs, 3))
	assert.False(t, IsFinalApproachFix(nil, 0))
}

func TestDeriveFlags_MissedApproachPoint(t *testing.T) {
	legs := []Leg{
		{Altitude: Str("MAP")},
		{Altitude: Str("2500")},
		{Altitude: Null()},
		{Altitude: Str("MAP ")},
		{Altitude: Int(0)},
	}
	DeriveFlags(legs)

	assert.True(t, legs[0].MissedApproachPoint)
	for _, leg := range legs[1:] {
		assert.False(t, leg.MissedApproachPoint)
	}
}

func TestParseAngle(t *testing.T) {
	tests := []struct {
		name   string
		in     Value
		want   float64
		wantOK bool
	}{
		{"real", Real(3.0), 3.0, true},
		{"int", Int(3), 3.0, true},
		{"text", Str("3.00"), 3.0, true},
		{"leading point", Str(".5"), 0.5, true},
		{"trailing point", Str("3."), 3.0, true},
		{"two points", Str("3.0.0"), 0, false},
		{"negative", Real(-3.0), 0, false},
		{"signed text", Str("+3"), 0, false},
		{"exponent", Real(0.00001), 0, false},
		{"empty", Str(""), 0, false},
		{"point only", Str("."), 0, false},
		{"spaces", Str(" 3"), 0, false},
		{"bool", Bool(true), 0, false},
		{"null", Null(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAngle(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

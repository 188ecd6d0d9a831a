package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Legacy boolean encoding used by the output format.
const (
	legacyFalse = 0
	legacyTrue  = -1
)

// NormalizedLeg is the output record for one leg. Field order is the wire
// order; do not reorder.
type NormalizedLeg struct {
	ID         int64 `json:"ID"`
	TerminalID int64 `json:"TerminalID"`
	Type       Value `json:"Type"`
	Transition Value `json:"Transition"`
	TrackCode  Value `json:"TrackCode"`
	WptID      Value `json:"WptID"`
	WptLat     Value `json:"WptLat"`
	WptLon     Value `json:"WptLon"`
	TurnDir    Value `json:"TurnDir"`
	NavID      Value `json:"NavID"`
	NavLat     Value `json:"NavLat"`
	NavLon     Value `json:"NavLon"`
	NavBear    Value `json:"NavBear"`
	NavDist    Value `json:"NavDist"`
	Course     Value `json:"Course"`
	Distance   Value `json:"Distance"`
	Alt        Value `json:"Alt"`
	Vnav       Value `json:"Vnav"`
	CenterID   Value `json:"CenterID"`
	CenterLat  Value `json:"CenterLat"`
	CenterLon  Value `json:"CenterLon"`
	IsFlyOver  Value `json:"IsFlyOver"`
	SpeedLimit Value `json:"SpeedLimit"`
	IsFAF      int   `json:"IsFAF"`
	IsMAP      int   `json:"IsMAP"`
}

// FieldOrder lists the output keys in wire order.
var FieldOrder = []string{
	"ID", "TerminalID", "Type", "Transition", "TrackCode",
	"WptID", "WptLat", "WptLon", "TurnDir",
	"NavID", "NavLat", "NavLon", "NavBear", "NavDist",
	"Course", "Distance", "Alt", "Vnav",
	"CenterID", "CenterLat", "CenterLon",
	"IsFlyOver", "SpeedLimit", "IsFAF", "IsMAP",
}

// Serialize converts a processed leg into its output record. Transition,
// TurnDir and Alt become "" when absent; every other absent field is null.
func Serialize(leg Leg) NormalizedLeg {
	return NormalizedLeg{
		ID:         leg.ID,
		TerminalID: leg.TerminalID,
		Type:       leg.Type,
		Transition: textOrEmpty(leg.Transition),
		TrackCode:  leg.TrackCode,
		WptID:      leg.Waypoint.ID,
		WptLat:     leg.Waypoint.Lat,
		WptLon:     leg.Waypoint.Lon,
		TurnDir:    textOrEmpty(leg.TurnDir),
		NavID:      leg.Navaid.ID,
		NavLat:     leg.Navaid.Lat,
		NavLon:     leg.Navaid.Lon,
		NavBear:    leg.NavBearing,
		NavDist:    leg.NavDist,
		Course:     leg.Course,
		Distance:   leg.Distance,
		Alt:        textOrEmpty(leg.Altitude),
		Vnav:       leg.Vnav,
		CenterID:   leg.Center.ID,
		CenterLat:  leg.Center.Lat,
		CenterLon:  leg.Center.Lon,
		IsFlyOver:  leg.FlyOver,
		SpeedLimit: IntPtr(leg.SpeedLimit),
		IsFAF:      legacyBool(leg.FinalApproachFix),
		IsMAP:      legacyBool(leg.MissedApproachPoint),
	}
}

// Leg rebuilds an input leg from an output record so already-normalized
// data can be fed back through the pipeline. Extension fields and flags are
// not carried over; they are recomputed.
func (n NormalizedLeg) Leg() Leg {
	return Leg{
		ID:         n.ID,
		TerminalID: n.TerminalID,
		Type:       n.Type,
		Transition: n.Transition,
		TrackCode:  n.TrackCode,
		Waypoint:   FixRef{ID: n.WptID, Lat: n.WptLat, Lon: n.WptLon},
		TurnDir:    n.TurnDir,
		Navaid:     FixRef{ID: n.NavID, Lat: n.NavLat, Lon: n.NavLon},
		NavBearing: n.NavBear,
		NavDist:    n.NavDist,
		Course:     n.Course,
		Distance:   n.Distance,
		Altitude:   n.Alt,
		Vnav:       n.Vnav,
		Center:     FixRef{ID: n.CenterID, Lat: n.CenterLat, Lon: n.CenterLon},
	}
}

func textOrEmpty(v Value) Value {
	if v.IsNull() {
		return Str("")
	}
	return v
}

func legacyBool(b bool) int {
	if b {
		return legacyTrue
	}
	return legacyFalse
}

// EncodeJSON marshals v compactly without HTML escaping and without a
// trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

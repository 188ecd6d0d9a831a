// Package domain models terminal procedure legs from a Fenix navigation
// database and normalizes them into the record layout read by the TFDi
// navigation engine.
//
// # Data Source
//
// The source is a SQLite file (".db3") exported by the Fenix A320 navdata
// tooling. A terminal procedure (approach, SID or STAR) is a row in
// Terminals; its legs are rows in TerminalLegs sharing a TerminalID, in
// retrieval order. TerminalLegsEx optionally adds per-leg attributes keyed
// by leg id. Waypoints and Runways hold the coordinates that legs refer to.
//
// # Leg Columns
//
// Columns used by the normalizer:
//
//	WptID/WptLat/WptLon        fix the leg terminates at
//	NavID/NavLat/NavLon        recommended navaid
//	CenterID/CenterLat/CenterLon  arc center (RF/AF legs)
//	Alt                        altitude constraint text, or "MAP"
//	Vnav                       vertical path angle in degrees, or null
//
// Center fixes and navaids resolve through the Waypoints table; every navaid
// has a collocated waypoint row with the same id.
//
// Note that the source spells the longitude column "Longtitude".
//
// # Normalization Passes
//
// Per procedure, in order:
//
//  1. [Backfill] fills missing coordinates from the reference tables. The
//     four rules form a priority chain and only the first applicable rule
//     runs. The chain is kept as-is: legs matching several rules have always
//     been emitted this way.
//  2. [MergeExtension] attaches fly-over and speed limit.
//  3. [DeriveFlags] marks the missed approach point (Alt == "MAP") and the
//     final approach fix: the last leg before the vertical angle first
//     exceeds 2.5 degrees, provided nothing earlier already reached 2.5 or
//     carried an unreadable angle.
//  4. [Serialize] produces the [NormalizedLeg].
//
// # Output Conventions
//
// Booleans are written as 0 (false) and -1 (true). Transition, TurnDir and
// Alt are "" when absent; all other absent fields are null. Integral reals
// keep a trailing ".0" (3.0 is written "3.0", not "3"). Output is idempotent:
// feeding a normalized procedure back in yields the same records.
package domain

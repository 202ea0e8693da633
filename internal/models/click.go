package models

// Click is a single map click inside a session. Token orders clicks of the same session:
// a larger token always belongs to a later click.
type Click struct {
	Token    uint64     // Token is the per-session sequence number of the click.
	Location Coordinate // Location is where the user clicked.
}

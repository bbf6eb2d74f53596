// README: Shared identifiers and coordinates.
package types

// ID is an opaque identifier (profile uid, order uuid, pharmacy id...).
type ID string

// Point is an immutable WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

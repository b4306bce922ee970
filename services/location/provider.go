package location

import (
	"context"
	"errors"
	"math"

	"platepick/models"
)

var (
	// ErrPermissionDenied means the caller may not be located at all.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrLocationUnavailable means permission was fine but no usable
	// coordinate could be produced.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Provider supplies a single current coordinate on demand.
type Provider interface {
	RequestPermission(ctx context.Context) error
	CurrentCoordinate(ctx context.Context) (models.Coordinate, error)
}

// Fixed is a Provider pinned to a client-supplied coordinate; the mobile app
// uses it whenever the device already knows its own position.
type Fixed struct {
	Coordinate models.Coordinate
}

func (f Fixed) RequestPermission(ctx context.Context) error {
	return nil
}

func (f Fixed) CurrentCoordinate(ctx context.Context) (models.Coordinate, error) {
	if !validCoordinate(f.Coordinate) {
		return models.Coordinate{}, ErrLocationUnavailable
	}
	return f.Coordinate, nil
}

func validCoordinate(c models.Coordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

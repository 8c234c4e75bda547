// Package geocode resolves street addresses to coordinates. The production
// implementation calls the Kakao local search API; callers that must never
// fail hard wrap it with Fallback.
package geocode

import (
	"context"
	"errors"

	"github.com/k-j-hyun/HRMS-jjpartners/internal/logging"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// ErrAddressNotFound indicates the geocoder returned no candidates for the
// address.
var ErrAddressNotFound = errors.New("address not found")

// SeoulCityHall is the conventional fallback coordinate for unresolvable
// addresses.
var SeoulCityHall = model.Coordinate{Lat: 37.5666805, Lon: 126.9784147}

// Geocoder resolves a human-entered address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (model.Coordinate, error)
}

// Fallback decorates a Geocoder so lookup failures resolve to a default
// coordinate instead of an error. Site registration flows use this: a
// misspelled address should produce a correctable fence, not a dead form.
type Fallback struct {
	Inner   Geocoder
	Default model.Coordinate
	Log     logging.Logger
}

// WithFallback wraps g so failures resolve to Seoul City Hall.
func WithFallback(g Geocoder, log logging.Logger) *Fallback {
	if log == nil {
		log = logging.Noop()
	}
	return &Fallback{Inner: g, Default: SeoulCityHall, Log: log}
}

// Geocode resolves address, substituting the default coordinate when the
// inner geocoder fails for any reason.
func (f *Fallback) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	pos, err := f.Inner.Geocode(ctx, address)
	if err != nil {
		f.Log.Warn(ctx, "geocoding failed, using fallback coordinate",
			logging.String("address", address),
			logging.Err(err),
		)
		return f.Default, nil
	}
	return pos, nil
}

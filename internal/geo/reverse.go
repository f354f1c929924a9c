package geo

import (
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/adegtyarev/skycast/internal/weather"
)

// GoogleResolver reverse-geocodes a fix into a "City, Country" label using
// the Google geocoding API. Requires an API key; construct only when one is
// configured.
type GoogleResolver struct{}

// NewGoogleResolver sets the geocoder API key and returns a resolver.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	geocoder.ApiKey = apiKey
	return &GoogleResolver{}
}

func (r *GoogleResolver) Resolve(coords weather.Coordinates) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  coords.Lat,
		Longitude: coords.Lon,
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode (%f,%f): %w", coords.Lat, coords.Lon, err)
	}
	if len(addresses) == 0 {
		return "", fmt.Errorf("reverse geocode (%f,%f): no results", coords.Lat, coords.Lon)
	}

	address := addresses[0]
	switch {
	case address.City != "" && address.Country != "":
		return address.City + ", " + address.Country, nil
	case address.City != "":
		return address.City, nil
	default:
		return address.Country, nil
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"clubcare/internal/models"

	"googlemaps.github.io/maps"
)

var (
	mapsClient  *maps.Client
	ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY environment variable not set")
)

// InitMapsClient initializes the Google Maps client
func InitMapsClient() error {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return ErrNoAPIKey
	}

	var err error
	mapsClient, err = maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return err
	}

	return nil
}

// ValidateBranchLocation resolves a place ID against the Maps API and
// returns the location the branch locator stores. The place must carry an
// address and coordinates, otherwise the app cannot pin the branch.
func ValidateBranchLocation(placeID string) (*models.Location, error) {
	if mapsClient == nil {
		if err := InitMapsClient(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	request := &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskPlaceID,
		},
	}

	response, err := mapsClient.PlaceDetails(ctx, request)
	if err != nil {
		return nil, err
	}

	return locationFromPlace(&response)
}

// locationFromPlace checks a place result is complete enough to anchor a
// branch on the locator map
func locationFromPlace(details *maps.PlaceDetailsResult) (*models.Location, error) {
	if details.FormattedAddress == "" {
		return nil, fmt.Errorf("place %s has no street address", details.PlaceID)
	}

	lat := details.Geometry.Location.Lat
	lng := details.Geometry.Location.Lng
	if lat == 0 && lng == 0 {
		return nil, fmt.Errorf("place %s has no coordinates", details.PlaceID)
	}

	return &models.Location{
		PlaceID:          details.PlaceID,
		Name:             details.Name,
		FormattedAddress: details.FormattedAddress,
		Latitude:         lat,
		Longitude:        lng,
	}, nil
}

package model

import (
	"errors"

	"github.com/mitchellh/mapstructure"
)

// GeolocationPayload is the camera pose a volunteer computed for an image.
type GeolocationPayload struct {
	Latitude    float64 `mapstructure:"latitude"`
	Longitude   float64 `mapstructure:"longitude"`
	Altitude    float64 `mapstructure:"altitude"`
	Azimuth     float64 `mapstructure:"azimuth"`
	Tilt        float64 `mapstructure:"tilt"`
	Roll        float64 `mapstructure:"roll"`
	FocalLength float64 `mapstructure:"focal_length"`
}

// CorrectionPayload proposes a new value for one metadata field of an image.
type CorrectionPayload struct {
	Field string `mapstructure:"field"`
	Value string `mapstructure:"value"`
}

// ObservationPayload is a free-text note, optionally anchored to a point on
// the image.
type ObservationPayload struct {
	Text string   `mapstructure:"text"`
	X    *float64 `mapstructure:"x"`
	Y    *float64 `mapstructure:"y"`
}

func decodePayload(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

func DecodeGeolocationPayload(raw map[string]any) (GeolocationPayload, error) {
	var payload GeolocationPayload
	if err := decodePayload(raw, &payload); err != nil {
		return GeolocationPayload{}, err
	}

	if payload.Latitude < -90 || payload.Latitude > 90 {
		return GeolocationPayload{}, errors.New("latitude out of range")
	}

	if payload.Longitude < -180 || payload.Longitude > 180 {
		return GeolocationPayload{}, errors.New("longitude out of range")
	}

	return payload, nil
}

func DecodeCorrectionPayload(raw map[string]any) (CorrectionPayload, error) {
	var payload CorrectionPayload
	if err := decodePayload(raw, &payload); err != nil {
		return CorrectionPayload{}, err
	}

	if payload.Field == "" {
		return CorrectionPayload{}, errors.New("missing corrected field name")
	}

	return payload, nil
}

func DecodeObservationPayload(raw map[string]any) (ObservationPayload, error) {
	var payload ObservationPayload
	if err := decodePayload(raw, &payload); err != nil {
		return ObservationPayload{}, err
	}

	if payload.Text == "" {
		return ObservationPayload{}, errors.New("missing observation text")
	}

	if (payload.X == nil) != (payload.Y == nil) {
		return ObservationPayload{}, errors.New("anchor point needs both x and y")
	}

	return payload, nil
}

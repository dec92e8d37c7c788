package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AilenFranco43/Booked/errors"
	"github.com/mitchellh/mapstructure"
)

func decodeBody(req *http.Request, target interface{}) error {
	decoder := json.NewDecoder(req.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return errors.Validation(errors.InvalidRequestFormatError)
	}
	return nil
}

// decodePatch reads a partial update. Fields listed in immutable are dropped
// silently, any other unknown field is rejected.
func decodePatch(req *http.Request, target interface{}, immutable ...string) error {
	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		return errors.Validation(errors.InvalidRequestFormatError)
	}

	for _, key := range immutable {
		delete(payload, key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(payload); err != nil {
		return errors.Validation(err.Error())
	}
	return nil
}

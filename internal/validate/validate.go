// Package validate enforces the write schemas for both collections.
//
// Vessels carry two schemas over the same three fields: strict for create
// and full replace (all fields required, no extras), partial for patch (at
// least one field, no extras). Cargo items use a strict create schema and
// accept any subset on patch with no minimum. The asymmetry between the
// two collections is part of the service contract.
package validate

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/jacentio/stevedore/internal/apierr"
	"github.com/jacentio/stevedore/internal/model"
)

var rules = validator.New()

// VesselStrict decodes a create/replace payload: name, category and length
// all required, correctly typed, no unknown fields, name at most 50 chars.
func VesselStrict(body []byte) (*model.VesselFields, error) {
	f, err := decodeVessel(body, true)
	if err != nil {
		return nil, err
	}
	if f.Name == nil || f.Category == nil || f.Length == nil {
		return nil, apierr.Validation("Request has invalid data.")
	}
	return f, nil
}

// VesselPartial decodes a patch payload: any subset of the three fields,
// but at least one, correctly typed, no unknown fields.
func VesselPartial(body []byte) (*model.VesselFields, error) {
	f, err := decodeVessel(body, true)
	if err != nil {
		return nil, err
	}
	if f.Name == nil && f.Category == nil && f.Length == nil {
		return nil, apierr.Validation("Request has invalid data.")
	}
	return f, nil
}

// CargoStrict decodes a cargo create/replace payload: volume, item and
// creation_date all required. Unknown fields are tolerated.
func CargoStrict(body []byte) (*model.CargoFields, error) {
	f, err := decodeCargo(body)
	if err != nil {
		return nil, err
	}
	if f.Volume == nil || f.Item == nil || f.CreationDate == nil {
		return nil, apierr.Validation(
			"The request object is missing at least one of the required attributes")
	}
	return f, nil
}

// CargoPartial decodes a cargo patch payload: any subset, including none.
func CargoPartial(body []byte) (*model.CargoFields, error) {
	return decodeCargo(body)
}

func decodeVessel(body []byte, strict bool) (*model.VesselFields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if strict {
		dec.DisallowUnknownFields()
	}
	var f model.VesselFields
	if err := dec.Decode(&f); err != nil {
		return nil, apierr.Validation("Request has invalid data.")
	}
	if err := rules.Struct(&f); err != nil {
		return nil, apierr.Validation("Request has invalid data.")
	}
	return &f, nil
}

func decodeCargo(body []byte) (*model.CargoFields, error) {
	var f model.CargoFields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, apierr.Validation("Request has invalid data.")
	}
	return &f, nil
}

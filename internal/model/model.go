// Package model defines the vessel and cargo item record types.
package model

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/stevedore/store"
)

// Entity kinds as addressed in the store.
const (
	KindVessel = "vessel"
	KindCargo  = "cargo_item"
)

// Ref is a reference to another record by id. Self is derived per request
// and never stored.
type Ref struct {
	ID   int64  `json:"id" dynamodbav:"id"`
	Self string `json:"self,omitempty" dynamodbav:"-"`
}

// Vessel is the parent entity. Children holds the ordered cargo refs; it
// is owned by the relationship manager and must not be written directly.
type Vessel struct {
	ID       int64   `json:"id" dynamodbav:"id"`
	Name     string  `json:"name" dynamodbav:"name"`
	Category string  `json:"category" dynamodbav:"category"`
	Length   float64 `json:"length" dynamodbav:"length"`
	Owner    string  `json:"owner" dynamodbav:"owner"`
	Children []Ref   `json:"children" dynamodbav:"children"`
	Self     string  `json:"self,omitempty" dynamodbav:"-"`
}

// CargoItem is the child entity. Carrier is the back-reference to at most
// one vessel and serializes as null when unset.
type CargoItem struct {
	ID           int64   `json:"id" dynamodbav:"id"`
	Volume       float64 `json:"volume" dynamodbav:"volume"`
	Item         string  `json:"item" dynamodbav:"item"`
	CreationDate string  `json:"creation_date" dynamodbav:"creation_date"`
	Carrier      *Ref    `json:"carrier" dynamodbav:"carrier"`
	Self         string  `json:"self,omitempty" dynamodbav:"-"`
}

// VesselFields is the write payload for vessels. Pointers distinguish
// absent fields in partial updates.
type VesselFields struct {
	Name     *string  `json:"name" validate:"omitempty,max=50"`
	Category *string  `json:"category"`
	Length   *float64 `json:"length"`
}

// CargoFields is the write payload for cargo items.
type CargoFields struct {
	Volume       *float64 `json:"volume"`
	Item         *string  `json:"item"`
	CreationDate *string  `json:"creation_date"`
}

// Record marshals the vessel for storage.
func (v *Vessel) Record() (store.Record, error) {
	if v.Children == nil {
		v.Children = []Ref{}
	}
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, err
	}
	return store.Record(item), nil
}

// Record marshals the cargo item for storage.
func (c *CargoItem) Record() (store.Record, error) {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, err
	}
	return store.Record(item), nil
}

// VesselFromRecord unmarshals a stored vessel record.
func VesselFromRecord(rec store.Record) (*Vessel, error) {
	var v Vessel
	if err := attributevalue.UnmarshalMap(rec, &v); err != nil {
		return nil, err
	}
	if v.Children == nil {
		v.Children = []Ref{}
	}
	return &v, nil
}

// CargoFromRecord unmarshals a stored cargo item record.
func CargoFromRecord(rec store.Record) (*CargoItem, error) {
	var c CargoItem
	if err := attributevalue.UnmarshalMap(rec, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

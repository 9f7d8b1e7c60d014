package model

import "time"

const (
	SpeciesDog     = "dog"
	SpeciesCat     = "cat"
	SpeciesBird    = "bird"
	SpeciesRabbit  = "rabbit"
	SpeciesReptile = "reptile"
	SpeciesOther   = "other"
)

type Pet struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID   string     `json:"owner_id" bson:"owner_id" validate:"required,max=128"`
	Name      string     `json:"name" bson:"name" validate:"required,min=2,max=60"`
	Species   string     `json:"species" bson:"species" validate:"required,oneof=dog cat bird rabbit reptile other"`
	Breed     string     `json:"breed,omitempty" bson:"breed,omitempty" validate:"omitempty,max=60"`
	BirthDate *time.Time `json:"birth_date,omitempty" bson:"birth_date,omitempty" validate:"omitempty,not_future"`
	WeightKg  float64    `json:"weight_kg,omitempty" bson:"weight_kg,omitempty" validate:"omitempty,gt=0,lte=200"`
	Notes     string     `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type PetUpdate struct {
	Name      string     `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Species   string     `json:"species,omitempty" bson:"species,omitempty" validate:"omitempty,oneof=dog cat bird rabbit reptile other"`
	Breed     string     `json:"breed,omitempty" bson:"breed,omitempty" validate:"omitempty,max=60"`
	BirthDate *time.Time `json:"birth_date,omitempty" bson:"birth_date,omitempty" validate:"omitempty,not_future"`
	WeightKg  *float64   `json:"weight_kg,omitempty" bson:"weight_kg,omitempty" validate:"omitempty,gt=0,lte=200"`
	Notes     *string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
}

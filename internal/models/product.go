package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto del catálogo tal como se guarda en la colección
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title" validate:"required"`
	Description string             `json:"description" bson:"description" validate:"required"`
	Slug        string             `json:"slug" bson:"slug"`
	Images      []string           `json:"images" bson:"images"`
	InStock     int                `json:"inStock" bson:"inStock" validate:"gte=0"`
	Price       float64            `json:"price" bson:"price" validate:"gte=0"`
	Sizes       []string           `json:"sizes" bson:"sizes" validate:"dive,oneof=XS S M L XL XXL XXXL"`
	Tags        []string           `json:"tags" bson:"tags"`
	Type        string             `json:"type" bson:"type" validate:"omitempty,oneof=shirts pants hoodies hats"`
	Gender      string             `json:"gender" bson:"gender" validate:"omitempty,oneof=men women kid unisex"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

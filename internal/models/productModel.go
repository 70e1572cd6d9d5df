package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate aplica las reglas del esquema de la colección
func (p *Product) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate.Struct(p)
}

// MinImages es la cantidad mínima de imágenes por producto
const MinImages = 2

// HasEnoughImages indica si el producto cumple con el mínimo de imágenes
func (p *Product) HasEnoughImages() bool {
	return len(p.Images) >= MinImages
}

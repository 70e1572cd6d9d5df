package handlers

import (
	"slices"
	"strings"

	"product-admin/internal/models"
)

// qualifyImages convierte nombres de archivo sueltos en URLs absolutas bajo <host>products/
func qualifyImages(products []models.Product, host string) {
	for i := range products {
		images := make([]string, len(products[i].Images))
		for j, image := range products[i].Images {
			if strings.Contains(image, "http") {
				images[j] = image
				continue
			}
			images[j] = host + "products/" + image
		}
		products[i].Images = images
	}
}

// orphanedImages devuelve las imágenes de before que ya no están en after
func orphanedImages(before, after []string) []string {
	var orphans []string
	for _, image := range before {
		if !slices.Contains(after, image) {
			orphans = append(orphans, image)
		}
	}
	return orphans
}

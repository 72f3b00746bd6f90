// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/models"
)

// ListAnimals handles GET /catalog/animals
func ListAnimals(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.Animals())
}

// ListTiers handles GET /catalog/tiers
func ListTiers(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.Tiers())
}

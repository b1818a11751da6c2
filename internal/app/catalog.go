package app

import (
	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/prompt"
)

// CatalogEntry is one selectable model or audience, as shown by the API
// layer's selection UI.
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Models lists the model catalogue.
func Models() []CatalogEntry {
	var out []CatalogEntry
	for _, c := range model.Catalog() {
		out = append(out, CatalogEntry{ID: string(c.ID), Name: c.DisplayName})
	}
	return out
}

// Audiences lists the audience catalogue.
func Audiences() []CatalogEntry {
	var out []CatalogEntry
	for _, a := range prompt.Audiences() {
		out = append(out, CatalogEntry{ID: string(a), Name: a.DisplayName()})
	}
	return out
}

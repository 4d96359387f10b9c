package main

import (
	"net/http"

	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/errors"
)

type exerciseSummary struct {
	Key    string         `json:"key"`
	Name   string         `json:"name"`
	Unit   catalog.Unit   `json:"unit"`
	Region catalog.Region `json:"region"`
}

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises := app.catalog.Exercises()
	out := make([]exerciseSummary, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, exerciseSummary{Key: e.Key, Name: e.Name, Unit: e.Unit, Region: e.Region})
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

// exerciseGET returns the full plan with the description rendered to HTML.
func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ex, ok := app.catalog.Exercise(key)
	if !ok {
		app.clientError(w, r, http.StatusNotFound, "unknown exercise")
		return
	}
	html, err := app.catalog.DescriptionHTML(key)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		catalog.Exercise
		DescriptionHTML string `json:"descriptionHtml"`
	}{Exercise: ex, DescriptionHTML: html})
}

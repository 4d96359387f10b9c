package main

import (
	"net/http"

	"github.com/myrjola/repcoach/internal/preferences"
	"github.com/myrjola/repcoach/internal/progress"
)

func (app *application) preferencesGET(w http.ResponseWriter, r *http.Request) {
	prefs, err := app.tracker.Preferences(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prefs)
}

// preferencesPUT applies a partial update. Invalid input is answered with 422 and the field errors, and nothing is
// stored.
func (app *application) preferencesPUT(w http.ResponseWriter, r *http.Request) {
	var in preferences.Input
	if !app.readJSON(w, r, &in) {
		return
	}
	res, err := app.tracker.UpdatePreferences(r.Context(), in)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	app.writeJSON(w, r, status, res)
}

func (app *application) accessibilityPUT(w http.ResponseWriter, r *http.Request) {
	a := progress.DefaultAccessibility()
	if !app.readJSON(w, r, &a) {
		return
	}
	saved, err := app.tracker.UpdateAccessibility(r.Context(), a)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		progress.Accessibility
		Saved bool `json:"saved"`
	}{Accessibility: a, Saved: saved})
}

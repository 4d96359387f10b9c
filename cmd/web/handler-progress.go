package main

import (
	"net/http"
	"slices"

	"github.com/myrjola/repcoach/internal/progress"
)

// progressGET returns the completed days as {exerciseKey: [dayId, …]}.
func (app *application) progressGET(w http.ResponseWriter, r *http.Request) {
	state, err := app.tracker.Load(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, state.CompletedDays)
}

// progressPOST marks a day completed. Marking a completed day again succeeds without changes.
func (app *application) progressPOST(w http.ResponseWriter, r *http.Request) {
	var in progress.DayRef
	if !app.readJSON(w, r, &in) {
		return
	}
	ex, ok := app.catalog.Exercise(in.ExerciseKey)
	if !ok {
		app.clientError(w, r, http.StatusBadRequest, "unknown exercise")
		return
	}
	if !slices.Contains(ex.DayIDs(), in.DayID) {
		app.clientError(w, r, http.StatusBadRequest, "unknown day")
		return
	}
	added, err := app.store.AddDay(r.Context(), in)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		Success bool `json:"success"`
		Added   bool `json:"added"`
	}{Success: true, Added: added})
}

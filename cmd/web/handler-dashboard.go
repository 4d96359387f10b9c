package main

import (
	"net/http"
)

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	d, err := app.tracker.Dashboard(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, d)
}

// streakFreezePOST spends a freeze token. Running out of tokens is answered with 409.
func (app *application) streakFreezePOST(w http.ResponseWriter, r *http.Request) {
	res, err := app.tracker.UseStreakFreeze(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusConflict
	}
	app.writeJSON(w, r, status, res)
}

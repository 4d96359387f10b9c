package main

import (
	"net/http"
	"strings"

	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/progress"
)

// todayGET lists the sessions due today. The optional program query parameter limits the stack to one program.
func (app *application) todayGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.tracker.Today(r.Context(), r.URL.Query().Get("program"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

func (app *application) sessionsPOST(w http.ResponseWriter, r *http.Request) {
	var in progress.SessionInput
	if !app.readJSON(w, r, &in) {
		return
	}
	res, err := app.tracker.LogSession(r.Context(), in)
	switch {
	case errors.Is(err, progress.ErrUnknownExercise), errors.Is(err, progress.ErrUnknownDay):
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, progress.ErrPlanComplete):
		app.clientError(w, r, http.StatusConflict, "plan already complete")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusCreated, res)
	}
}

func (app *application) gymSessionsPOST(w http.ResponseWriter, r *http.Request) {
	var in progress.GymSessionInput
	if !app.readJSON(w, r, &in) {
		return
	}
	res, err := app.tracker.LogGymSession(r.Context(), in)
	switch {
	case errors.Is(err, progress.ErrEmptySession):
		app.clientError(w, r, http.StatusBadRequest, "session has no sets")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusCreated, res)
	}
}

// gymProgramGET returns the program adapted to the comma separated equipment query parameter. Without the
// parameter the program is returned unchanged.
func (app *application) gymProgramGET(w http.ResponseWriter, r *http.Request) {
	program, ok := app.catalog.GymProgram(r.PathValue("id"))
	if !ok {
		app.clientError(w, r, http.StatusNotFound, "unknown program")
		return
	}
	equipment := r.URL.Query().Get("equipment")
	if equipment == "" {
		app.writeJSON(w, r, http.StatusOK, gym.FilterResult{Program: program, Substituted: nil, Unavailable: nil})
		return
	}
	app.writeJSON(w, r, http.StatusOK, gym.FilterProgramByEquipment(app.catalog, program, strings.Split(equipment, ",")))
}

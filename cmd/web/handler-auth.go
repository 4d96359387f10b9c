package main

import (
	"net/http"

	"github.com/myrjola/repcoach/internal/auth"
	"github.com/myrjola/repcoach/internal/errors"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (app *application) registerPOST(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !app.readJSON(w, r, &in) {
		return
	}
	session, err := app.auth.Register(r.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		app.clientError(w, r, http.StatusConflict, "username taken")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusCreated, session)
	}
}

func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !app.readJSON(w, r, &in) {
		return
	}
	session, err := app.auth.Login(r.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidInput):
		app.clientError(w, r, http.StatusUnauthorized, "invalid username or password")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, session)
	}
}

package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		public = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.timeout(next)))
		}
		mustAuthenticate = func(next http.Handler) http.Handler {
			return public(app.authenticate(next))
		}
	)

	mux.Handle("POST /auth/register", public(http.HandlerFunc(app.registerPOST)))
	mux.Handle("POST /auth/login", public(http.HandlerFunc(app.loginPOST)))

	mux.Handle("GET /api/progress", mustAuthenticate(http.HandlerFunc(app.progressGET)))
	mux.Handle("POST /api/progress", mustAuthenticate(http.HandlerFunc(app.progressPOST)))
	mux.Handle("GET /api/today", mustAuthenticate(http.HandlerFunc(app.todayGET)))
	mux.Handle("POST /api/sessions", mustAuthenticate(http.HandlerFunc(app.sessionsPOST)))
	mux.Handle("POST /api/gym/sessions", mustAuthenticate(http.HandlerFunc(app.gymSessionsPOST)))
	mux.Handle("GET /api/gym/programs/{id}", mustAuthenticate(http.HandlerFunc(app.gymProgramGET)))
	mux.Handle("GET /api/preferences", mustAuthenticate(http.HandlerFunc(app.preferencesGET)))
	mux.Handle("PUT /api/preferences", mustAuthenticate(http.HandlerFunc(app.preferencesPUT)))
	mux.Handle("PUT /api/accessibility", mustAuthenticate(http.HandlerFunc(app.accessibilityPUT)))
	mux.Handle("GET /api/dashboard", mustAuthenticate(http.HandlerFunc(app.dashboardGET)))
	mux.Handle("POST /api/streak/freeze", mustAuthenticate(http.HandlerFunc(app.streakFreezePOST)))
	mux.Handle("GET /api/export", mustAuthenticate(http.HandlerFunc(app.exportGET)))

	mux.Handle("GET /api/exercises", public(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{key}", public(http.HandlerFunc(app.exerciseGET)))
	mux.Handle("GET /api/healthy", public(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /metrics", app.metrics.Handler())

	mux.Handle("/", public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.clientError(w, r, http.StatusNotFound, "not found")
	})))

	return app.logAndTraceRequest(secureHeaders(mux))
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/repcoach/internal/errors"
)

// exportGET streams a SQLite database holding all rows of the authenticated user.
func (app *application) exportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dir, err := os.MkdirTemp("", "repcoach-export-")
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create export dir"))
		return
	}
	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to remove export dir",
				slog.String("path", dir), errors.SlogError(removeErr))
		}
	}()

	exportPath, err := app.store.Export(ctx, dir)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "export user data"))
		return
	}
	file, err := os.Open(exportPath)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "open export file"))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close export file",
				slog.String("path", exportPath), errors.SlogError(closeErr))
		}
	}()

	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(exportPath)))
	if _, err = io.Copy(w, file); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "failed to stream export file",
			slog.String("path", exportPath), errors.SlogError(err))
	}
}

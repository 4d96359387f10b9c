package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/repcoach/internal/e2etest"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/logging"
	"github.com/myrjola/repcoach/internal/progress"
	"github.com/myrjola/repcoach/internal/syncclient"
	"github.com/myrjola/repcoach/internal/testhelpers"
)

var errMissingDay = errors.NewSentinel("pushed day missing on server")

// TestAuth registers a throwaway user and logs in again.
func TestAuth(ctx context.Context, client *e2etest.Client) error {
	username := "smoke-" + uuid.NewString()[:8]
	password := uuid.NewString()
	if _, err := client.Register(ctx, username, password); err != nil {
		return errors.Wrap(err, "register user", slog.String("username", username))
	}
	client.SetToken("")
	if _, err := client.Login(ctx, username, password); err != nil {
		return errors.Wrap(err, "login user", slog.String("username", username))
	}
	return nil
}

// TestSync logs a session through a tracker whose local store is mirrored to the server and checks that the day
// arrived.
func TestSync(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	store := syncclient.NewSyncStore(progress.NewMemoryStore(), client.Client, logger)
	tracker := progress.NewTracker(store, logger)
	res, err := tracker.LogSession(ctx, progress.SessionInput{ExerciseKey: "pushups", Sets: []int{10, 10, 10}})
	if err != nil {
		return errors.Wrap(err, "log session")
	}
	if unpushed := store.Unpushed(); len(unpushed) > 0 {
		return errors.Wrap(errMissingDay, "push day", slog.Int("unpushed", len(unpushed)))
	}
	days, err := client.FetchProgress(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch progress")
	}
	if !slices.Contains(days["pushups"], "p11") {
		return errors.Wrap(errMissingDay, "verify progress", slog.Any("days", days))
	}
	var dashboard struct {
		Stats struct {
			TotalSessions int `json:"totalSessions"`
		} `json:"stats"`
	}
	if err = client.Do(ctx, http.MethodGet, "/api/dashboard", nil, &dashboard); err != nil {
		return errors.Wrap(err, "fetch dashboard")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "synced session",
		slog.Float64("volume", res.Entry.Volume), slog.Int("server_sessions", dashboard.Stats.TotalSessions))
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // generous for a cold start.
	defer cancel()
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url)
	defer client.Close()
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // nothing to clean up.
	}
	if err := TestAuth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1)
	}
	if err := TestSync(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing sync", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}

package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/repcoach/internal/preferences"
	"github.com/myrjola/repcoach/internal/ptr"
)

func Test_application_preferences(t *testing.T) {
	server := startServer(t)
	ctx := t.Context()
	client := server.Client()
	if _, err := client.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var prefs preferences.Preferences
	if err := client.Do(ctx, http.MethodGet, "/api/preferences", nil, &prefs); err != nil {
		t.Fatalf("GET /api/preferences: %v", err)
	}
	if diff := cmp.Diff(preferences.Defaults(), prefs); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	t.Run("invalid update is rejected", func(t *testing.T) {
		resp, err := client.Raw(ctx, http.MethodPut, "/api/preferences", preferences.Input{
			TrainingDaysPerWeek: ptr.Ref(9),
			FitnessLevel:        ptr.Ref("advanced"),
		})
		if err != nil {
			t.Fatalf("Raw: %v", err)
		}
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", resp.StatusCode, resp.Body)
		}
		var got preferences.Preferences
		if err = client.Do(ctx, http.MethodGet, "/api/preferences", nil, &got); err != nil {
			t.Fatalf("GET /api/preferences: %v", err)
		}
		if got.FitnessLevel != preferences.Defaults().FitnessLevel {
			t.Errorf("fitness level changed to %q", got.FitnessLevel)
		}
	})

	t.Run("valid update", func(t *testing.T) {
		var res struct {
			Valid          bool                    `json:"valid"`
			Sanitized      preferences.Preferences `json:"sanitized"`
			RegeneratePlan bool                    `json:"regeneratePlan"`
			Saved          bool                    `json:"saved"`
		}
		in := preferences.Input{SetsPerExercise: ptr.Ref(4), FitnessLevel: ptr.Ref("advanced")}
		if err := client.Do(ctx, http.MethodPut, "/api/preferences", in, &res); err != nil {
			t.Fatalf("PUT /api/preferences: %v", err)
		}
		if !res.Valid || !res.Saved || !res.RegeneratePlan {
			t.Errorf("unexpected result %+v", res)
		}
		var got preferences.Preferences
		if err := client.Do(ctx, http.MethodGet, "/api/preferences", nil, &got); err != nil {
			t.Fatalf("GET /api/preferences: %v", err)
		}
		if got.SetsPerExercise != 4 || got.FitnessLevel != "advanced" {
			t.Errorf("preferences = %+v", got)
		}
	})

	t.Run("single field update keeps the others", func(t *testing.T) {
		in := preferences.Input{Timezone: ptr.Ref("Europe/Helsinki")}
		if err := client.Do(ctx, http.MethodPut, "/api/preferences", in, nil); err != nil {
			t.Fatalf("PUT /api/preferences: %v", err)
		}
		var got preferences.Preferences
		if err := client.Do(ctx, http.MethodGet, "/api/preferences", nil, &got); err != nil {
			t.Fatalf("GET /api/preferences: %v", err)
		}
		want := preferences.Defaults()
		want.SetsPerExercise = 4
		want.FitnessLevel = "advanced"
		want.Timezone = "Europe/Helsinki"
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("preferences mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("streak freeze", func(t *testing.T) {
		var res struct {
			Success   bool `json:"success"`
			Remaining int  `json:"remaining"`
		}
		if err := client.Do(ctx, http.MethodPost, "/api/streak/freeze", nil, &res); err != nil {
			t.Fatalf("POST /api/streak/freeze: %v", err)
		}
		if !res.Success {
			t.Errorf("freeze = %+v, want success", res)
		}
	})
}

package progress

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/repcoach/internal/contexthelpers"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// SQLiteStore persists the state of the user authenticated in the context.
type SQLiteStore struct {
	db *sqlite.Database
}

func NewSQLiteStore(db *sqlite.Database) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func userFrom(ctx context.Context) (string, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// Export writes a standalone SQLite database with the authenticated user's rows into dir and returns its path.
func (s *SQLiteStore) Export(ctx context.Context, dir string) (string, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return "", err
	}
	path, err := s.db.ExportUser(ctx, userID, dir)
	if err != nil {
		return "", errors.Wrap(err, "export user", slog.String("user_id", userID))
	}
	return path, nil
}

// Load reads the full state. Missing rows fall back to the defaults of NewState.
func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return State{}, err
	}
	state := NewState()
	loaders := []struct {
		name string
		fn   func(context.Context, string, *State) error
	}{
		{"completed days", s.loadCompletedDays},
		{"session history", s.loadHistory},
		{"preferences", s.loadPreferences},
		{"gym weights", s.loadGymWeights},
		{"gym sessions", s.loadGymSessions},
		{"singletons", s.loadSingletons},
	}
	for _, l := range loaders {
		if err = l.fn(ctx, userID, &state); err != nil {
			return State{}, errors.Wrap(err, "load "+l.name, slog.String("user_id", userID))
		}
	}
	return state, nil
}

func (s *SQLiteStore) loadCompletedDays(ctx context.Context, userID string, state *State) error {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_key, day_id
		FROM completed_days
		WHERE user_id = ?
		ORDER BY exercise_key, position`, userID)
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		var key, dayID string
		if err = rows.Scan(&key, &dayID); err != nil {
			return errors.Wrap(err, "scan")
		}
		state.CompletedDays.Add(key, dayID)
	}
	return errors.Wrap(rows.Err(), "rows")
}

func (s *SQLiteStore) loadHistory(ctx context.Context, userID string, state *State) error {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_key, performed_at, volume, unit, sets, deload
		FROM session_history
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e           history.Entry
			performedAt string
			sets        string
		)
		if err = rows.Scan(&e.ExerciseKey, &performedAt, &e.Volume, &e.Unit, &sets, &e.Deload); err != nil {
			return errors.Wrap(err, "scan")
		}
		if e.Date, err = time.Parse(timestampFormat, performedAt); err != nil {
			return errors.Wrap(err, "parse performed_at", slog.String("performed_at", performedAt))
		}
		if err = json.Unmarshal([]byte(sets), &e.Sets); err != nil {
			return errors.Wrap(err, "unmarshal sets")
		}
		if len(e.Sets) == 0 {
			e.Sets = nil
		}
		state.History = append(state.History, e)
	}
	return errors.Wrap(rows.Err(), "rows")
}

func (s *SQLiteStore) loadPreferences(ctx context.Context, userID string, state *State) error {
	var (
		p             = &state.Preferences
		preferredDays string
	)
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT training_days_per_week, preferred_days, target_session_duration, rep_scheme, sets_per_exercise,
		       progression_rate, program_duration, rest_between_sets, fitness_level, timezone
		FROM training_preferences
		WHERE user_id = ?`, userID).Scan(
		&p.TrainingDaysPerWeek, &preferredDays, &p.TargetSessionDuration, &p.RepScheme, &p.SetsPerExercise,
		&p.ProgressionRate, &p.ProgramDuration, &p.RestBetweenSets, &p.FitnessLevel, &p.Timezone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "query")
	}
	return errors.Wrap(json.Unmarshal([]byte(preferredDays), &p.PreferredDays), "unmarshal preferred days")
}

func (s *SQLiteStore) loadGymWeights(ctx context.Context, userID string, state *State) error {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, weight_kg, reps
		FROM gym_weights
		WHERE user_id = ?`, userID)
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   string
			kg   float64
			reps string
		)
		if err = rows.Scan(&id, &kg, &reps); err != nil {
			return errors.Wrap(err, "scan")
		}
		var parsed []int
		if err = json.Unmarshal([]byte(reps), &parsed); err != nil {
			return errors.Wrap(err, "unmarshal reps", slog.String("exercise_id", id))
		}
		state.GymWeights[id] = kg
		state.GymReps[id] = parsed
	}
	return errors.Wrap(rows.Err(), "rows")
}

func (s *SQLiteStore) loadGymSessions(ctx context.Context, userID string, state *State) error {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT program_id, day_name, performed_at, exercises
		FROM gym_sessions
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			session     gym.Session
			performedAt string
			exercises   string
		)
		if err = rows.Scan(&session.ProgramID, &session.DayName, &performedAt, &exercises); err != nil {
			return errors.Wrap(err, "scan")
		}
		if session.Date, err = time.Parse(timestampFormat, performedAt); err != nil {
			return errors.Wrap(err, "parse performed_at", slog.String("performed_at", performedAt))
		}
		if err = json.Unmarshal([]byte(exercises), &session.Exercises); err != nil {
			return errors.Wrap(err, "unmarshal exercises")
		}
		state.GymSessions = append(state.GymSessions, session)
	}
	return errors.Wrap(rows.Err(), "rows")
}

func (s *SQLiteStore) loadSingletons(ctx context.Context, userID string, state *State) error {
	err := s.db.ReadOnly.QueryRowContext(ctx, `SELECT month, used FROM streak_freezes WHERE user_id = ?`, userID).
		Scan(&state.Freeze.Month, &state.Freeze.Used)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "query streak freezes")
	}
	var active string
	err = s.db.ReadOnly.QueryRowContext(ctx, `SELECT deloads, active FROM rep_scheme_progress WHERE user_id = ?`,
		userID).Scan(&state.SchemeStage.Deloads, &active)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return errors.Wrap(err, "query rep scheme progress")
	default:
		if err = json.Unmarshal([]byte(active), &state.SchemeStage.Active); err != nil {
			return errors.Wrap(err, "unmarshal active deloads")
		}
		if len(state.SchemeStage.Active) == 0 {
			state.SchemeStage.Active = nil
		}
	}
	a := &state.Accessibility
	err = s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT reduced_motion, high_contrast, large_text, sound, haptics
		FROM accessibility_settings
		WHERE user_id = ?`, userID).Scan(&a.ReducedMotion, &a.HighContrast, &a.LargeText, &a.Sound, &a.Haptics)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "query accessibility settings")
	}
	return nil
}

// Save applies p in a single transaction. Adding an already completed day is a no-op.
func (s *SQLiteStore) Save(ctx context.Context, p Patch) error {
	userID, err := userFrom(ctx)
	if err != nil {
		return err
	}
	if p.IsZero() {
		return nil
	}
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		steps := []struct {
			name string
			fn   func(context.Context, *sql.Tx, string, Patch) error
		}{
			{"completed days", saveCompletedDays},
			{"session history", saveHistory},
			{"gym sessions", saveGymSessions},
			{"gym targets", saveGymTargets},
			{"preferences", savePreferences},
			{"singletons", saveSingletons},
		}
		for _, step := range steps {
			if txErr := step.fn(ctx, tx, userID, p); txErr != nil {
				return errors.Wrap(txErr, "save "+step.name)
			}
		}
		return nil
	})
	return errors.Wrap(err, "save progress", slog.String("user_id", userID))
}

// AddDay inserts a single completed day and reports whether it was new.
func (s *SQLiteStore) AddDay(ctx context.Context, d DayRef) (bool, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return false, err
	}
	var added bool
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		added, txErr = insertDay(ctx, tx, userID, d)
		return txErr
	})
	return added, errors.Wrap(err, "add day", slog.String("exercise_key", d.ExerciseKey), slog.String("day_id", d.DayID))
}

func insertDay(ctx context.Context, tx *sql.Tx, userID string, d DayRef) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO completed_days (user_id, exercise_key, day_id, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0)
		                  FROM completed_days
		                  WHERE user_id = ? AND exercise_key = ?))
		ON CONFLICT (user_id, exercise_key, day_id) DO NOTHING`,
		userID, d.ExerciseKey, d.DayID, userID, d.ExerciseKey)
	if err != nil {
		return false, errors.Wrap(err, "insert completed day")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

func saveCompletedDays(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	var days []DayRef
	if p.ReplaceCompletedDays != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM completed_days WHERE user_id = ?`, userID); err != nil {
			return errors.Wrap(err, "delete completed days")
		}
		for key, ids := range p.ReplaceCompletedDays {
			for _, id := range ids {
				days = append(days, DayRef{ExerciseKey: key, DayID: id})
			}
		}
	}
	for _, d := range append(days, p.AddDays...) {
		if _, err := insertDay(ctx, tx, userID, d); err != nil {
			return err
		}
	}
	return nil
}

func saveHistory(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	for _, e := range p.AppendHistory {
		sets := e.Sets
		if sets == nil {
			sets = []int{}
		}
		b, err := json.Marshal(sets)
		if err != nil {
			return errors.Wrap(err, "marshal sets")
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_history (user_id, exercise_key, performed_at, volume, unit, sets, deload)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, e.ExerciseKey, e.Date.UTC().Format(timestampFormat), max(e.Volume, 0), e.Unit, string(b),
			e.Deload); err != nil {
			return errors.Wrap(err, "insert entry", slog.String("exercise_key", e.ExerciseKey))
		}
	}
	return nil
}

func saveGymSessions(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	for _, session := range p.AppendGymSessions {
		exercises, err := json.Marshal(session.Exercises)
		if err != nil {
			return errors.Wrap(err, "marshal exercises")
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO gym_sessions (user_id, program_id, day_name, performed_at, exercises)
			VALUES (?, ?, ?, ?, ?)`,
			userID, session.ProgramID, session.DayName, session.Date.UTC().Format(timestampFormat),
			string(exercises)); err != nil {
			return errors.Wrap(err, "insert gym session")
		}
	}
	return nil
}

func saveGymTargets(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	for id, target := range p.GymTargets {
		reps := target.Reps
		if reps == nil {
			reps = []int{}
		}
		b, err := json.Marshal(reps)
		if err != nil {
			return errors.Wrap(err, "marshal reps")
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO gym_weights (user_id, exercise_id, weight_kg, reps)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, exercise_id) DO UPDATE SET
				weight_kg = excluded.weight_kg,
				reps = excluded.reps`,
			userID, id, target.WeightKg, string(b)); err != nil {
			return errors.Wrap(err, "upsert gym weight", slog.String("exercise_id", id))
		}
	}
	return nil
}

func savePreferences(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	if p.Preferences == nil {
		return nil
	}
	prefs := *p.Preferences
	days := prefs.PreferredDays
	if days == nil {
		days = []time.Weekday{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return errors.Wrap(err, "marshal preferred days")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_preferences (
			user_id, training_days_per_week, preferred_days, target_session_duration, rep_scheme,
			sets_per_exercise, progression_rate, program_duration, rest_between_sets, fitness_level, timezone
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			training_days_per_week = excluded.training_days_per_week,
			preferred_days = excluded.preferred_days,
			target_session_duration = excluded.target_session_duration,
			rep_scheme = excluded.rep_scheme,
			sets_per_exercise = excluded.sets_per_exercise,
			progression_rate = excluded.progression_rate,
			program_duration = excluded.program_duration,
			rest_between_sets = excluded.rest_between_sets,
			fitness_level = excluded.fitness_level,
			timezone = excluded.timezone`,
		userID, prefs.TrainingDaysPerWeek, string(b), prefs.TargetSessionDuration, prefs.RepScheme,
		prefs.SetsPerExercise, prefs.ProgressionRate, prefs.ProgramDuration, prefs.RestBetweenSets,
		prefs.FitnessLevel, cmp.Or(prefs.Timezone, "UTC"))
	return errors.Wrap(err, "upsert preferences")
}

func saveSingletons(ctx context.Context, tx *sql.Tx, userID string, p Patch) error {
	if f := p.Freeze; f != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO streak_freezes (user_id, month, used) VALUES (?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET month = excluded.month, used = excluded.used`,
			userID, f.Month, f.Used); err != nil {
			return errors.Wrap(err, "upsert streak freezes")
		}
	}
	if r := p.SchemeStage; r != nil {
		active := r.Active
		if active == nil {
			active = map[string]float64{}
		}
		b, err := json.Marshal(active)
		if err != nil {
			return errors.Wrap(err, "marshal active deloads")
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO rep_scheme_progress (user_id, deloads, active) VALUES (?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET deloads = excluded.deloads, active = excluded.active`,
			userID, r.Deloads, string(b)); err != nil {
			return errors.Wrap(err, "upsert rep scheme progress")
		}
	}
	if a := p.Accessibility; a != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accessibility_settings (user_id, reduced_motion, high_contrast, large_text, sound, haptics)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				reduced_motion = excluded.reduced_motion,
				high_contrast = excluded.high_contrast,
				large_text = excluded.large_text,
				sound = excluded.sound,
				haptics = excluded.haptics`,
			userID, a.ReducedMotion, a.HighContrast, a.LargeText, a.Sound, a.Haptics); err != nil {
			return errors.Wrap(err, "upsert accessibility settings")
		}
	}
	return nil
}

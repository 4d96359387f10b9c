package envstruct_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/repcoach/internal/envstruct"
	"github.com/myrjola/repcoach/internal/errors"
)

func unset(string) (string, bool) { return "", false }

func TestPopulate(t *testing.T) {
	type config struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:0"`
		Secret   string        `env:"SECRET"`
		Workers  int           `env:"WORKERS" envDefault:"4"`
		Debug    bool          `env:"DEBUG" envDefault:"false"`
		Ratio    float64       `env:"RATIO" envDefault:"0.7"`
		TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
		Ignored  int
	}

	tests := []struct {
		name      string
		v         any
		lookupEnv func(string) (string, bool)
		want      any
		wantErr   error
	}{
		{
			name:      "nil",
			v:         nil,
			lookupEnv: unset,
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "not pointer",
			v:         struct{}{},
			lookupEnv: unset,
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "empty struct",
			v:         &struct{}{},
			lookupEnv: unset,
			want:      &struct{}{},
		},
		{
			name:      "required variable missing",
			v:         &config{},
			lookupEnv: unset,
			wantErr:   envstruct.ErrEnvNotSet,
		},
		{
			name: "defaults",
			v:    &config{},
			lookupEnv: func(s string) (string, bool) {
				if s == "SECRET" {
					return "hunter2", true
				}
				return "", false
			},
			want: &config{
				Addr:     "localhost:0",
				Secret:   "hunter2",
				Workers:  4,
				Debug:    false,
				Ratio:    0.7,
				TokenTTL: 24 * time.Hour,
			},
		},
		{
			name: "environment overrides defaults",
			v:    &config{},
			lookupEnv: func(s string) (string, bool) {
				return map[string]string{
					"ADDR":      ":8080",
					"SECRET":    "s",
					"WORKERS":   "8",
					"DEBUG":     "true",
					"RATIO":     "1.5",
					"TOKEN_TTL": "90m",
				}[s], true
			},
			want: &config{
				Addr:     ":8080",
				Secret:   "s",
				Workers:  8,
				Debug:    true,
				Ratio:    1.5,
				TokenTTL: 90 * time.Minute,
			},
		},
		{
			name: "unparseable int",
			v: &struct {
				N int `env:"N"`
			}{},
			lookupEnv: func(string) (string, bool) { return "many", true },
			wantErr:   envstruct.ErrParse,
		},
		{
			name: "unsupported type",
			v: &struct {
				S []string `env:"S"`
			}{},
			lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			wantErr:   envstruct.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envstruct.Populate(tt.v, tt.lookupEnv)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Populate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Populate() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, tt.v); diff != "" {
				t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Package catalog holds the static training data: bodyweight exercise plans, programs, progression trees, rep
// schemes and gym programs. The data is embedded from catalog.yaml and never mutated.
package catalog

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	_ "embed"

	"github.com/myrjola/repcoach/internal/errors"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

const (
	// Weeks is the number of weeks in every bodyweight plan.
	Weeks = 6
	// DaysPerWeek is the number of sessions per plan week.
	DaysPerWeek = 3
	// ProgramLength is the number of sessions in a complete plan.
	ProgramLength = Weeks * DaysPerWeek
)

// Unit is what an exercise target counts.
type Unit string

const (
	UnitReps    Unit = "reps"
	UnitSeconds Unit = "seconds"
)

// Region is the body region an exercise belongs to in the weekday split.
type Region string

const (
	RegionUpper Region = "upper"
	RegionLower Region = "lower"
	RegionCore  Region = "core"
)

var (
	ErrNotFound = errors.NewSentinel("not found")
	ErrInvalid  = errors.NewSentinel("invalid catalog")
)

// Exercise is a bodyweight exercise plan.
type Exercise struct {
	Key           string   `yaml:"key" json:"key"`
	Name          string   `yaml:"name" json:"name"`
	Unit          Unit     `yaml:"unit" json:"unit"`
	Region        Region   `yaml:"region" json:"region"`
	Prefix        string   `yaml:"prefix" json:"prefix"`
	Base          int      `yaml:"base" json:"base"`
	FinalGoal     int      `yaml:"finalGoal" json:"finalGoal"`
	FinalGoalText string   `yaml:"finalGoalText" json:"finalGoalText"`
	Variations    []string `yaml:"variations" json:"variations"`
	MuscleGroups  []string `yaml:"muscleGroups" json:"muscleGroups"`
	Description   string   `yaml:"description" json:"description"`
	// Weeks holds the target for each day, indexed [week][day] from zero.
	Weeks [][]int `yaml:"weeks" json:"weeks"`
}

// DayID returns the identifier of the 1-based week and day, for example "p11".
func (e Exercise) DayID(week, day int) string {
	return fmt.Sprintf("%s%d%d", e.Prefix, week, day)
}

// Target returns the target of the 1-based week and day or zero when out of range.
func (e Exercise) Target(week, day int) int {
	if week < 1 || week > len(e.Weeks) || day < 1 || day > len(e.Weeks[week-1]) {
		return 0
	}
	return e.Weeks[week-1][day-1]
}

// DayIDs lists all day identifiers in week and day order.
func (e Exercise) DayIDs() []string {
	ids := make([]string, 0, ProgramLength)
	for w := 1; w <= Weeks; w++ {
		for d := 1; d <= DaysPerWeek; d++ {
			ids = append(ids, e.DayID(w, d))
		}
	}
	return ids
}

// Program is a named subset of exercises.
type Program struct {
	Name      string   `yaml:"name" json:"name"`
	Title     string   `yaml:"title" json:"title"`
	Exercises []string `yaml:"exercises" json:"exercises"`
}

// Level is a step in a progression tree.
type Level struct {
	Key        string `yaml:"key" json:"key"`
	Name       string `yaml:"name" json:"name"`
	TargetReps int    `yaml:"targetReps" json:"targetReps"`
}

// Tree is a chain of exercise variants ordered from easiest to hardest.
type Tree struct {
	Name   string  `yaml:"name" json:"name"`
	Levels []Level `yaml:"levels" json:"levels"`
}

// RepScheme is a sets × reps prescription.
type RepScheme struct {
	Name string `yaml:"name" json:"name"`
	Sets int    `yaml:"sets" json:"sets"`
	Reps int    `yaml:"reps" json:"reps"`
}

// GymExercise is a weighted exercise with the equipment it needs and its substitutes in order of preference.
type GymExercise struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Equipment    []string `yaml:"equipment" json:"equipment"`
	MuscleGroups []string `yaml:"muscleGroups" json:"muscleGroups"`
	Substitutes  []string `yaml:"substitutes" json:"substitutes"`
}

// GymSlot is an exercise prescription inside a gym day.
type GymSlot struct {
	ExerciseID string `yaml:"exerciseId" json:"exerciseId"`
	TargetSets int    `yaml:"targetSets" json:"targetSets"`
	TargetReps int    `yaml:"targetReps" json:"targetReps"`
}

// GymDay is one workout of a split.
type GymDay struct {
	Name      string    `yaml:"name" json:"name"`
	Exercises []GymSlot `yaml:"exercises" json:"exercises"`
}

// GymProgram is a named split of workout days.
type GymProgram struct {
	ID   string   `yaml:"id" json:"id"`
	Name string   `yaml:"name" json:"name"`
	Days []GymDay `yaml:"days" json:"days"`
}

// Catalog is the parsed static data. The zero value is empty and usable.
type Catalog struct {
	exercises    []Exercise
	programs     []Program
	trees        []Tree
	repSchemes   []RepScheme
	equipment    []string
	gymExercises []GymExercise
	gymPrograms  []GymProgram
}

type document struct {
	Exercises    []Exercise    `yaml:"exercises"`
	Programs     []Program     `yaml:"programs"`
	Trees        []Tree        `yaml:"progressionTrees"`
	RepSchemes   []RepScheme   `yaml:"repSchemes"`
	Equipment    []string      `yaml:"equipment"`
	GymExercises []GymExercise `yaml:"gymExercises"`
	GymPrograms  []GymProgram  `yaml:"gymPrograms"`
}

//go:embed catalog.yaml
var embedded []byte

//nolint:gochecknoglobals // parsed once from the embedded file.
var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embedded)
})

// Default returns the embedded catalog. It panics if the embedded file is corrupt.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(b []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	c := &Catalog{
		exercises:    doc.Exercises,
		programs:     doc.Programs,
		trees:        doc.Trees,
		repSchemes:   doc.RepSchemes,
		equipment:    doc.Equipment,
		gymExercises: doc.GymExercises,
		gymPrograms:  doc.GymPrograms,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	invalid := func(msg string, attrs ...slog.Attr) {
		errs = append(errs, errors.Wrap(ErrInvalid, msg, attrs...))
	}

	keys := make(map[string]bool)
	prefixes := make(map[string]bool)
	for _, e := range c.exercises {
		key := slog.String("exercise", e.Key)
		if e.Key == "" || keys[e.Key] {
			invalid("missing or duplicate exercise key", key)
		}
		keys[e.Key] = true
		if e.Prefix == "" || prefixes[e.Prefix] {
			invalid("missing or duplicate day prefix", key, slog.String("prefix", e.Prefix))
		}
		prefixes[e.Prefix] = true
		if e.Unit != UnitReps && e.Unit != UnitSeconds {
			invalid("unknown unit", key, slog.String("unit", string(e.Unit)))
		}
		if e.Region != RegionUpper && e.Region != RegionLower && e.Region != RegionCore {
			invalid("unknown region", key, slog.String("region", string(e.Region)))
		}
		if len(e.Weeks) != Weeks || slices.ContainsFunc(e.Weeks, func(days []int) bool { return len(days) != DaysPerWeek }) {
			invalid("plan must have 6 weeks of 3 days", key)
		}
	}
	for _, p := range c.programs {
		for _, k := range p.Exercises {
			if !keys[k] {
				invalid("program references unknown exercise", slog.String("program", p.Name), slog.String("exercise", k))
			}
		}
	}
	for _, t := range c.trees {
		if len(t.Levels) == 0 {
			invalid("empty progression tree", slog.String("tree", t.Name))
		}
	}

	gymIDs := make(map[string]bool)
	for _, g := range c.gymExercises {
		gymIDs[g.ID] = true
	}
	for _, g := range c.gymExercises {
		for _, s := range g.Substitutes {
			if !gymIDs[s] {
				invalid("unknown substitute", slog.String("exercise", g.ID), slog.String("substitute", s))
			}
		}
	}
	for _, p := range c.gymPrograms {
		for _, d := range p.Days {
			for _, slot := range d.Exercises {
				if !gymIDs[slot.ExerciseID] {
					invalid("gym program references unknown exercise",
						slog.String("program", p.ID), slog.String("exercise", slot.ExerciseID))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Exercise returns the plan for key.
func (c *Catalog) Exercise(key string) (Exercise, bool) {
	i := slices.IndexFunc(c.exercises, func(e Exercise) bool { return e.Key == key })
	if i < 0 {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

// Exercises returns all plans in catalog order.
func (c *Catalog) Exercises() []Exercise {
	return slices.Clone(c.exercises)
}

// ExercisesByRegion returns the plans belonging to any of regions in catalog order.
func (c *Catalog) ExercisesByRegion(regions ...Region) []Exercise {
	var out []Exercise
	for _, e := range c.exercises {
		if slices.Contains(regions, e.Region) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Program(name string) (Program, bool) {
	i := slices.IndexFunc(c.programs, func(p Program) bool { return p.Name == name })
	if i < 0 {
		return Program{}, false
	}
	return c.programs[i], true
}

func (c *Catalog) Programs() []Program {
	return slices.Clone(c.programs)
}

func (c *Catalog) Tree(name string) (Tree, bool) {
	i := slices.IndexFunc(c.trees, func(t Tree) bool { return t.Name == name })
	if i < 0 {
		return Tree{}, false
	}
	return c.trees[i], true
}

// RepSchemes returns the rep schemes in evolution order.
func (c *Catalog) RepSchemes() []RepScheme {
	return slices.Clone(c.repSchemes)
}

// Equipment lists all known equipment identifiers.
func (c *Catalog) Equipment() []string {
	return slices.Clone(c.equipment)
}

func (c *Catalog) GymExercise(id string) (GymExercise, bool) {
	i := slices.IndexFunc(c.gymExercises, func(g GymExercise) bool { return g.ID == id })
	if i < 0 {
		return GymExercise{}, false
	}
	return c.gymExercises[i], true
}

func (c *Catalog) GymProgram(id string) (GymProgram, bool) {
	i := slices.IndexFunc(c.gymPrograms, func(p GymProgram) bool { return p.ID == id })
	if i < 0 {
		return GymProgram{}, false
	}
	return c.gymPrograms[i], true
}

func (c *Catalog) GymPrograms() []GymProgram {
	return slices.Clone(c.gymPrograms)
}

// DescriptionHTML renders the markdown description of the exercise.
func (c *Catalog) DescriptionHTML(key string) (string, error) {
	e, ok := c.Exercise(key)
	if !ok {
		return "", errors.Wrap(ErrNotFound, "exercise", slog.String("key", key))
	}
	var buf strings.Builder
	if err := goldmark.Convert([]byte(e.Description), &buf); err != nil {
		return "", errors.Wrap(err, "render description", slog.String("key", key))
	}
	return buf.String(), nil
}

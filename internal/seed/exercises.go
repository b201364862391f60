// Package seed loads reference data: the exercise library and hand-written
// programs.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"cvos/coach-app/internal/service"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var exercisesYAML []byte

// ExerciseSeed is one entry of the exercise catalog file.
type ExerciseSeed struct {
	Name      string   `yaml:"name"`
	Category  string   `yaml:"category"`
	Aliases   []string `yaml:"aliases"`
	Equipment []string `yaml:"equipment"`
}

// ExerciseReport counts what a seeding run did.
type ExerciseReport struct {
	Created  int
	Existing int
}

// LoadExercises parses a YAML exercise list.
func LoadExercises(data []byte) ([]ExerciseSeed, error) {
	var items []ExerciseSeed
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}
	for i, it := range items {
		if it.Name == "" {
			return nil, fmt.Errorf("exercise catalog entry %d has no name", i)
		}
	}
	return items, nil
}

// DefaultExercises returns the embedded catalog.
func DefaultExercises() ([]ExerciseSeed, error) {
	return LoadExercises(exercisesYAML)
}

// SeedExercises makes sure every item exists in the library, merging aliases
// into exercises that are already there. It is safe to run repeatedly.
func SeedExercises(ctx context.Context, exercises service.ExerciseService, items []ExerciseSeed, log *zap.Logger) (ExerciseReport, error) {
	var report ExerciseReport
	for _, it := range items {
		ex, created, err := exercises.Ensure(ctx, service.ExerciseInput{
			Name:      it.Name,
			Category:  it.Category,
			Aliases:   it.Aliases,
			Equipment: it.Equipment,
		})
		if err != nil {
			return report, fmt.Errorf("ensure exercise %q: %w", it.Name, err)
		}
		if created {
			report.Created++
			log.Info("exercise created", zap.String("name", ex.Name), zap.Strings("aliases", ex.Aliases))
		} else {
			report.Existing++
			log.Debug("exercise exists", zap.String("name", ex.Name))
		}
	}
	return report, nil
}

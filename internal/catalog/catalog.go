package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/claude/gymflow/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog holds the seed programs and the builder's exercise library.
type Catalog struct {
	Programs []models.Program
	Library  []models.ExercisePreset
	Presets  Presets
}

// Presets are the quick-pick values offered by the day builder.
type Presets struct {
	Reps        []string `yaml:"reps" json:"reps"`
	RPE         []string `yaml:"rpe" json:"rpe"`
	RestSeconds []int    `yaml:"rest_seconds" json:"restSeconds"`
}

type seedProgram struct {
	models.Program `yaml:",inline"`
	CreatedDaysAgo int `yaml:"created_days_ago"`
}

type file struct {
	Programs []seedProgram          `yaml:"programs"`
	Library  []models.ExercisePreset `yaml:"library"`
	Presets  Presets                 `yaml:"presets"`
}

// Default parses the embedded catalog.
func Default(now time.Time) (*Catalog, error) {
	return Parse(defaultCatalog, now)
}

// Load reads a catalog override from disk.
func Load(path string, now time.Time) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data, now)
}

// Parse decodes catalog YAML. Relative creation ages are resolved against now.
func Parse(data []byte, now time.Time) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{Library: f.Library, Presets: f.Presets}
	for _, sp := range f.Programs {
		p := sp.Program
		if p.CreatedAt == 0 {
			p.CreatedAt = now.AddDate(0, 0, -sp.CreatedDaysAgo).UnixMilli()
		}
		if p.Source == "" {
			p.Source = models.SourceCoach
		}
		c.Programs = append(c.Programs, p)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Programs))
	for _, p := range c.Programs {
		if p.ID == "" {
			return fmt.Errorf("program %q has no id", p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate program id %q", p.ID)
		}
		seen[p.ID] = true
		if p.DurationWeeks <= 0 || p.DaysPerWeek <= 0 {
			return fmt.Errorf("program %q: duration_weeks and days_per_week must be positive", p.ID)
		}
		if !p.Level.Valid() {
			return fmt.Errorf("program %q: unknown level %q", p.ID, p.Level)
		}
		if p.Progress.CompletedWorkouts > p.Progress.TotalWorkouts {
			return fmt.Errorf("program %q: completed workouts exceed total", p.ID)
		}
		for _, d := range p.Days {
			for _, ex := range d.Exercises {
				if len(ex.Sets) == 0 {
					return fmt.Errorf("program %q day %q: exercise %q has no sets", p.ID, d.ID, ex.ID)
				}
			}
		}
	}
	return nil
}

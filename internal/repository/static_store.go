package repository

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"

	"gopkg.in/yaml.v3"

	"ainav/backend/pkg/models"
)

//go:embed data/*.yaml
var embedded embed.FS

// Data is the raw content of the static tables.
type Data struct {
	Categories       []models.Category         `yaml:"categories"`
	DefaultCategory  string                    `yaml:"default_category"`
	SimpleDefaults   []models.ToolRecord       `yaml:"simple_defaults"`
	FallbackDefaults []models.ToolRecord       `yaml:"fallback_defaults"`
	Tiers            []models.ModelTier        `yaml:"tiers"`
	Scenarios        []models.ScenarioTemplate `yaml:"scenarios"`
	Cases            []models.CaseRecord       `yaml:"cases"`
}

// StaticStore serves the catalog, model tiers, scenario templates and cases
// from memory. It is immutable after construction and safe for concurrent
// use; callers must treat returned slices as read-only.
type StaticStore struct {
	data       Data
	byKey      map[string][]models.ToolRecord
	byCapacity map[models.Complexity]models.ModelTier
}

var (
	_ Catalog       = (*StaticStore)(nil)
	_ ModelTable    = (*StaticStore)(nil)
	_ ScenarioStore = (*StaticStore)(nil)
	_ CaseStore     = (*StaticStore)(nil)
)

// Load reads the tables bundled into the binary.
func Load() (*StaticStore, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads catalog.yaml, models.yaml, scenarios.yaml and cases.yaml from
// fsys.
func LoadFS(fsys fs.FS) (*StaticStore, error) {
	var data Data
	for _, name := range []string{"catalog.yaml", "models.yaml", "scenarios.yaml", "cases.yaml"} {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var part Data
		if err := yaml.Unmarshal(raw, &part); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		data.merge(part)
	}
	return New(data)
}

func (d *Data) merge(o Data) {
	d.Categories = append(d.Categories, o.Categories...)
	if o.DefaultCategory != "" {
		d.DefaultCategory = o.DefaultCategory
	}
	d.SimpleDefaults = append(d.SimpleDefaults, o.SimpleDefaults...)
	d.FallbackDefaults = append(d.FallbackDefaults, o.FallbackDefaults...)
	d.Tiers = append(d.Tiers, o.Tiers...)
	d.Scenarios = append(d.Scenarios, o.Scenarios...)
	d.Cases = append(d.Cases, o.Cases...)
}

// New validates data and builds a store from it.
func New(data Data) (*StaticStore, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	s := &StaticStore{
		data:       data,
		byKey:      make(map[string][]models.ToolRecord, len(data.Categories)),
		byCapacity: make(map[models.Complexity]models.ModelTier, len(data.Tiers)),
	}
	for _, c := range data.Categories {
		s.byKey[c.Key] = c.Tools
	}
	for _, t := range data.Tiers {
		s.byCapacity[t.Capability] = t
	}
	return s, nil
}

// Categories returns every category in its defined order.
func (s *StaticStore) Categories() []models.Category {
	return slices.Clone(s.data.Categories)
}

// Lookup returns the tools of an exact category key.
func (s *StaticStore) Lookup(key string) ([]models.ToolRecord, bool) {
	tools, ok := s.byKey[key]
	return tools, ok
}

func (s *StaticStore) DefaultCategory() string { return s.data.DefaultCategory }

func (s *StaticStore) SimpleDefaults() []models.ToolRecord {
	return slices.Clone(s.data.SimpleDefaults)
}

func (s *StaticStore) FallbackDefaults() []models.ToolRecord {
	return slices.Clone(s.data.FallbackDefaults)
}

// ForCapability returns the tier serving the given complexity class.
func (s *StaticStore) ForCapability(c models.Complexity) (models.ModelTier, bool) {
	t, ok := s.byCapacity[c]
	return t, ok
}

func (s *StaticStore) Tiers() []models.ModelTier {
	return slices.Clone(s.data.Tiers)
}

// Scenarios returns every template in registration order.
func (s *StaticStore) Scenarios() []models.ScenarioTemplate {
	return slices.Clone(s.data.Scenarios)
}

func (s *StaticStore) Cases() []models.CaseRecord {
	return slices.Clone(s.data.Cases)
}

func validate(d Data) error {
	var errs []error

	if len(d.Categories) == 0 {
		errs = append(errs, errors.New("catalog has no categories"))
	}
	seen := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		if c.Key == "" {
			errs = append(errs, errors.New("catalog category with empty key"))
			continue
		}
		if seen[c.Key] {
			errs = append(errs, fmt.Errorf("duplicate catalog category %q", c.Key))
		}
		seen[c.Key] = true
		for _, t := range c.Tools {
			if err := checkTool(t.Name, t.URL); err != nil {
				errs = append(errs, fmt.Errorf("category %q: %w", c.Key, err))
			}
		}
	}
	if !seen[d.DefaultCategory] {
		errs = append(errs, fmt.Errorf("default category %q is not in the catalog", d.DefaultCategory))
	}
	for name, list := range map[string][]models.ToolRecord{"simple_defaults": d.SimpleDefaults, "fallback_defaults": d.FallbackDefaults} {
		if len(list) == 0 {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
		for _, t := range list {
			if err := checkTool(t.Name, t.URL); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}

	for _, want := range []models.Complexity{models.ComplexitySimple, models.ComplexityModerate, models.ComplexityComplex} {
		if !slices.ContainsFunc(d.Tiers, func(t models.ModelTier) bool { return t.Capability == want }) {
			errs = append(errs, fmt.Errorf("no model tier for %s tasks", want))
		}
	}
	for _, t := range d.Tiers {
		if t.ID == "" || t.CostPerMillionTokens < 0 {
			errs = append(errs, fmt.Errorf("invalid model tier %+v", t))
		}
	}

	ids := make(map[string]bool, len(d.Scenarios))
	for _, sc := range d.Scenarios {
		if sc.ID == "" || ids[sc.ID] {
			errs = append(errs, fmt.Errorf("scenario id %q is empty or duplicated", sc.ID))
		}
		ids[sc.ID] = true
		if len(sc.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("scenario %q has no keywords", sc.ID))
		}
		if err := ValidateWorkflow(sc.Workflow); err != nil {
			errs = append(errs, fmt.Errorf("scenario %q: %w", sc.ID, err))
		}
		for _, step := range sc.Steps {
			for _, t := range step.Tools {
				if err := checkTool(t.Name, t.URL); err != nil {
					errs = append(errs, fmt.Errorf("scenario %q step %d: %w", sc.ID, step.Step, err))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// ValidateWorkflow checks the structural invariants every served workflow
// must hold: at least one step, at most MaxToolsPerStep tools per step and
// strictly increasing step numbers starting at 1 or above.
func ValidateWorkflow(w models.Workflow) error {
	if len(w.Steps) == 0 {
		return errors.New("workflow has no steps")
	}
	prev := 0
	for i, step := range w.Steps {
		if step.Step <= prev {
			return fmt.Errorf("step %d at position %d is not increasing", step.Step, i)
		}
		prev = step.Step
		if len(step.Tools) > models.MaxToolsPerStep {
			return fmt.Errorf("step %d lists %d tools, max %d", step.Step, len(step.Tools), models.MaxToolsPerStep)
		}
	}
	return nil
}

func checkTool(name, raw string) error {
	if name == "" {
		return errors.New("tool with empty name")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("tool %q has a non-absolute url %q", name, raw)
	}
	return nil
}

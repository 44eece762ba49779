package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/pickups/common"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the default pickup catalog name.
const CatalogFile = "pickups.yaml"

var (
	ErrUnknownModel   = errors.New("prefabs: unknown pickup model")
	ErrDuplicateModel = errors.New("prefabs: duplicate pickup model")
)

// PickupSpec describes one pickup kind, keyed by the model id placed in the
// world.
type PickupSpec struct {
	Model     int      `yaml:"model"`
	Name      string   `yaml:"name"`
	Effect    string   `yaml:"effect"`
	Amount    int      `yaml:"amount"`
	Weapon    int      `yaml:"weapon"`
	Cooldown  float64  `yaml:"cooldown"` // seconds
	Radius    float64  `yaml:"radius"`
	Once      bool     `yaml:"once"`
	TouchedBy []string `yaml:"touched_by"`
	Abilities []string `yaml:"abilities"`
	Script    string   `yaml:"script"`
}

// CooldownDuration returns the re-enable delay, falling back to
// common.DefaultPickupCooldown when unset.
func (s PickupSpec) CooldownDuration() time.Duration {
	if s.Cooldown <= 0 {
		return common.DefaultPickupCooldown
	}
	return time.Duration(s.Cooldown * float64(time.Second))
}

// SensorRadius returns the sensor radius, falling back to
// common.DefaultSensorRadius when unset.
func (s PickupSpec) SensorRadius() float64 {
	if s.Radius <= 0 {
		return common.DefaultSensorRadius
	}
	return s.Radius
}

type Catalog struct {
	Pickups []PickupSpec `yaml:"pickups"`

	byModel map[int]int
}

// LoadCatalog reads, validates and indexes a pickup catalog.
func LoadCatalog(filename string) (*Catalog, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return cat, nil
}

// ParseCatalog validates raw YAML against the catalog schema and indexes it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := ValidateCatalog(doc); err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	cat.byModel = make(map[int]int, len(cat.Pickups))
	for i, spec := range cat.Pickups {
		if _, dup := cat.byModel[spec.Model]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateModel, spec.Model)
		}
		cat.byModel[spec.Model] = i
		cat.Pickups[i].Effect = strings.ToLower(strings.TrimSpace(spec.Effect))
	}
	return &cat, nil
}

// Lookup returns the spec for model.
func (c *Catalog) Lookup(model int) (PickupSpec, error) {
	if c != nil {
		if i, ok := c.byModel[model]; ok {
			return c.Pickups[i], nil
		}
	}
	return PickupSpec{}, fmt.Errorf("%w: %d", ErrUnknownModel, model)
}

// Models returns every model id in ascending order.
func (c *Catalog) Models() []int {
	if c == nil {
		return nil
	}
	out := make([]int, 0, len(c.byModel))
	for m := range c.byModel {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/prefabs"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig    `toml:"logging"`
	Simulation SimulationConfig `toml:"simulation"`
	Placements []Placement      `toml:"placements"`
	Actors     []ActorConfig    `toml:"actors"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type SimulationConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`
	Steps     int           `toml:"steps"`    // 0 runs until interrupted
	Realtime  bool          `toml:"realtime"` // sleep tick_rate between ticks
	Catalog   string        `toml:"catalog"`
	PrefabDir string        `toml:"prefab_dir"` // on-disk overrides for catalog and scripts
	Watch     bool          `toml:"watch"`      // respawn pickups when prefab_dir changes
}

// Placement puts one catalog pickup into the world.
type Placement struct {
	Model    int        `toml:"model"`
	Position [3]float64 `toml:"position"`
}

func (p Placement) Vec() common.Vec3 {
	return vec(p.Position)
}

type ActorConfig struct {
	Name      string       `toml:"name"`
	Type      string       `toml:"type"` // object type name, "character" when empty
	Player    bool         `toml:"player"`
	Radius    float64      `toml:"radius"`
	Position  [3]float64   `toml:"position"`
	Health    int          `toml:"health"`
	MaxHealth int          `toml:"max_health"`
	Armour    int          `toml:"armour"`
	MaxArmour int          `toml:"max_armour"`
	Money     int          `toml:"money"`
	Route     [][3]float64 `toml:"route"`
	Speed     float64      `toml:"speed"`
	Loop      bool         `toml:"loop"`
}

// Actor returns the actor component; the type must already be validated.
func (a ActorConfig) Actor() component.Actor {
	ot := component.ObjectCharacter
	if a.Type != "" {
		ot, _ = component.ParseObjectType(a.Type)
	}
	return component.Actor{Name: a.Name, Type: ot, Radius: a.Radius, Player: a.Player}
}

func (a ActorConfig) Stats() component.Stats {
	return component.Stats{
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		Armour:    a.Armour,
		MaxArmour: a.MaxArmour,
		Money:     a.Money,
	}
}

func (a ActorConfig) Waypoints() component.Waypoints {
	wp := component.Waypoints{Speed: a.Speed, Loop: a.Loop}
	for _, p := range a.Route {
		wp.Points = append(wp.Points, vec(p))
	}
	return wp
}

func (a ActorConfig) Vec() common.Vec3 {
	return vec(a.Position)
}

func vec(p [3]float64) common.Vec3 {
	return common.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalid)
	}
	if c.Simulation.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative", ErrInvalid)
	}
	for i, a := range c.Actors {
		if _, ok := component.ParseObjectType(a.Type); a.Type != "" && !ok {
			return fmt.Errorf("%w: actors[%d]: unknown type %q", ErrInvalid, i, a.Type)
		}
		if len(a.Route) > 0 && a.Speed <= 0 {
			return fmt.Errorf("%w: actors[%d]: route needs a positive speed", ErrInvalid, i)
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Simulation: SimulationConfig{
			TickRate:  100 * time.Millisecond,
			Steps:     600,
			Catalog:   prefabs.CatalogFile,
			PrefabDir: "prefabs",
		},
	}
}

// Command pickupsim runs a headless pickup simulation: catalog pickups placed
// in a world with scripted actors walking through them.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/milk9111/pickups/config"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"github.com/milk9111/pickups/ecs/system"
	"github.com/milk9111/pickups/physics"
	"github.com/milk9111/pickups/pickup"
	"github.com/milk9111/pickups/prefabs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value string) {
	dotsLen := max(42-len(label)-len(value), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

type sim struct {
	cfg       *config.Config
	log       *zap.Logger
	world     *ecs.World
	physics   *physics.World
	spawner   *system.Spawner
	events    *system.EventLogSystem
	scheduler *ecs.Scheduler
	actors    []ecs.Entity

	catalogMod time.Time // disk mtime of the loaded catalog, zero when embedded
}

func run() error {
	cfgPath := "config/pickupsim.toml"
	if p := os.Getenv("PICKUPSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printSection("catalog")
	prefabs.Dir = cfg.Simulation.PrefabDir
	catalog, err := prefabs.LoadCatalog(cfg.Simulation.Catalog)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	printStat("pickup kinds", fmt.Sprint(len(catalog.Models())))

	s := newSim(cfg, catalog, log)
	printStat("pickups placed", fmt.Sprint(s.spawnPlacements()))
	s.spawnActors()
	printStat("actors", fmt.Sprint(len(s.actors)))
	fmt.Println()

	var (
		reloads    <-chan string
		watchErrCh <-chan error
	)
	if cfg.Simulation.Watch {
		dir := cfg.Simulation.PrefabDir
		w, err := prefabs.NewWatcher(dir, filepath.Join(dir, "scripts"))
		if err != nil {
			log.Warn("prefab watch disabled", zap.String("dir", dir), zap.Error(err))
		} else {
			defer w.Close()
			reloads = w.Events
			watchErrCh = w.Errors
			printOK("watching " + dir)
		}
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	// Steps = 0 runs until interrupted, so it always follows the wall clock.
	var tickCh <-chan time.Time
	if cfg.Simulation.Realtime || cfg.Simulation.Steps == 0 {
		ticker := time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
		tickCh = ticker.C
	}

	log.Info("simulation started",
		zap.Duration("tick_rate", cfg.Simulation.TickRate),
		zap.Int("steps", cfg.Simulation.Steps))

	for step := 0; cfg.Simulation.Steps == 0 || step < cfg.Simulation.Steps; {
		select {
		case path := <-reloads:
			s.reload(path)
			continue
		case err := <-watchErrCh:
			log.Warn("prefab watch error", zap.Error(err))
			continue
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			s.printSummary(step)
			return nil
		default:
		}

		if tickCh != nil {
			select {
			case <-tickCh:
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				s.printSummary(step)
				return nil
			}
		}

		s.scheduler.Update(s.world, cfg.Simulation.TickRate)
		step++
	}

	s.printSummary(cfg.Simulation.Steps)
	return nil
}

func newSim(cfg *config.Config, catalog *prefabs.Catalog, log *zap.Logger) *sim {
	world := ecs.NewWorld()
	pw := physics.NewWorld(log)
	s := &sim{
		cfg:     cfg,
		log:     log,
		world:   world,
		physics: pw,
		spawner: system.NewSpawner(world, pw, catalog, log),
		events:  system.NewEventLogSystem(log),
	}
	s.scheduler = ecs.NewScheduler(
		system.NewMovementSystem(),
		system.NewPhysicsSystem(pw),
		system.NewPickupSystem(),
		s.events,
		system.NewTTLSystem(log),
	)
	s.catalogMod, _ = prefabs.ModTime(cfg.Simulation.Catalog)
	return s
}

func (s *sim) spawnPlacements() int {
	n := 0
	for _, pl := range s.cfg.Placements {
		if _, err := s.spawner.Spawn(pl.Model, pl.Vec()); err != nil {
			s.log.Warn("placement skipped", zap.Int("model", pl.Model), zap.Error(err))
			continue
		}
		n++
	}
	return n
}

func (s *sim) spawnActors() {
	for _, a := range s.cfg.Actors {
		e, err := s.spawner.SpawnActor(a.Actor(), a.Vec(), a.Stats(), a.Waypoints())
		if err != nil {
			s.log.Warn("actor skipped", zap.String("name", a.Name), zap.Error(err))
			continue
		}
		s.actors = append(s.actors, e)
	}
}

// reload swaps in the edited catalog and respawns every placement. Catalog
// events whose file mtime has not moved are skipped; script edits always
// respawn. A catalog that fails to load leaves the running pickups alone.
func (s *sim) reload(path string) bool {
	mod, onDisk := prefabs.ModTime(s.cfg.Simulation.Catalog)
	if prefabs.IsCatalogFile(path) && onDisk && mod.Equal(s.catalogMod) {
		s.log.Debug("catalog unchanged, reload skipped", zap.String("path", path))
		return false
	}
	catalog, err := prefabs.LoadCatalog(s.cfg.Simulation.Catalog)
	if err != nil {
		s.log.Warn("prefab reload failed", zap.String("path", path), zap.Error(err))
		return false
	}
	s.catalogMod = mod
	despawned := s.spawner.DespawnAll()
	s.spawner.SetCatalog(catalog)
	spawned := s.spawnPlacements()
	s.log.Info("prefabs reloaded",
		zap.String("path", path),
		zap.Int("despawned", despawned),
		zap.Int("spawned", spawned))
	return true
}

func (s *sim) printSummary(steps int) {
	fmt.Println()
	printSection("summary")
	printStat("simulated", (time.Duration(steps) * s.cfg.Simulation.TickRate).String())
	printStat("pickups collected", fmt.Sprint(s.events.Count(ecs.EventPickupCollected)))
	printStat("pickups removed", fmt.Sprint(s.events.Count(ecs.EventPickupRemoved)))
	printStat("pickups left", fmt.Sprint(ecs.Count(s.world, pickup.Component.Kind())))
	printStat("sensors", fmt.Sprint(s.physics.SensorCount()))
	fmt.Println()

	printSection("actors")
	for _, e := range s.actors {
		actor, ok := ecs.Get(s.world, e, component.ActorComponent.Kind())
		if !ok {
			continue
		}
		st, _ := ecs.Get(s.world, e, component.StatsComponent.Kind())
		if st == nil {
			st = &component.Stats{}
		}
		line := fmt.Sprintf("hp %d/%d  ar %d  $%d  score %d", st.Health, st.MaxHealth, st.Armour, st.Money, st.Score)
		if inv, ok := ecs.Get(s.world, e, component.InventoryComponent.Kind()); ok {
			line += fmt.Sprintf("  weapons %d", len(inv.Weapons))
		}
		if ab, ok := ecs.Get(s.world, e, component.AbilitiesComponent.Kind()); ok {
			line += fmt.Sprintf("  abilities %d", len(ab.Granted))
		}
		printStat(actor.Name, line)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hydrosift/watershed/internal/config"
	"github.com/hydrosift/watershed/internal/gis"
	"github.com/hydrosift/watershed/internal/model"
	"github.com/hydrosift/watershed/internal/pipeline"
	"github.com/hydrosift/watershed/internal/report"
	"github.com/hydrosift/watershed/internal/stats"
)

// Core is the central coordinator of the system. It owns the process-wide
// engine session and guarantees it is released exactly once on shutdown,
// whichever path led there.
type Core struct {
	cfg     *config.Config
	bus     *EventBus
	health  *HealthMonitor
	session *gis.Session
	engine  gis.Engine
	driver  *pipeline.Driver
	log     zerolog.Logger
	// runMutex serializes pipeline runs; the engine session is process-wide
	runMutex sync.Mutex
	BaseComponent
}

// NewCore creates a new core system
func NewCore(cfg *config.Config, log zerolog.Logger) *Core {
	return &Core{
		cfg:           cfg,
		log:           log.With().Str("component", "core").Logger(),
		BaseComponent: NewBaseComponent("core", "Core System"),
	}
}

// Initialize prepares the core system for operation: event bus, health
// monitor, engine session, and the pipeline driver.
func (c *Core) Initialize() bool {
	c.bus = NewEventBus()
	c.health = NewHealthMonitor()

	if !c.bus.Initialize() {
		return false
	}
	if !c.health.Initialize() {
		return false
	}

	session, err := gis.NewSession(c.cfg.EnginePath, c.log)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to acquire engine session")
		c.SetStatus(model.StatusError)
		return false
	}
	c.session = session
	c.engine = gis.NewSAGAEngine(session, c.log)

	driver, err := pipeline.NewDriver(
		c.engine,
		stats.NewAggregator(c.engine, c.log),
		report.NewWriter(),
		c.bus,
		c.log,
	)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to build pipeline driver")
		c.session.Release()
		c.SetStatus(model.StatusError)
		return false
	}
	c.driver = driver

	c.health.RegisterComponent(c)
	c.health.RegisterComponent(c.bus)
	c.health.RegisterComponent(c.health)
	c.health.RegisterComponent(newSessionComponent(c.session))

	c.SetStatus(model.StatusInitialized)
	return true
}

// Start begins core system operation
func (c *Core) Start() bool {
	if !c.bus.Start() {
		return false
	}
	if !c.health.Start() {
		return false
	}

	c.SetStatus(model.StatusRunning)
	c.PublishEvent(model.EventComponentStatusChange, c.ID(), c.GetStatus())
	return true
}

// Stop halts core system operation and releases the engine session. It is
// safe to call on every exit path; the release happens only once.
func (c *Core) Stop() bool {
	if c.session != nil {
		c.session.Release()
	}
	if c.health != nil {
		c.health.Stop()
	}
	if c.bus != nil {
		c.bus.Stop()
	}

	c.SetStatus(model.StatusStopped)
	return true
}

// Execute runs the full delineation workflow with the configured inputs
func (c *Core) Execute(ctx context.Context) (*model.RunResult, error) {
	return c.ExecuteSpec(ctx, pipeline.RunSpec{
		DEMPath:         c.cfg.DEMPath,
		PourPointsPath:  c.cfg.PourPointsPath,
		OutputDir:       c.cfg.OutputDir,
		StreamThreshold: c.cfg.StreamThreshold,
	})
}

// ExecuteSpec runs the full delineation workflow with explicit inputs.
// Runs execute one at a time.
func (c *Core) ExecuteSpec(ctx context.Context, spec pipeline.RunSpec) (*model.RunResult, error) {
	c.runMutex.Lock()
	defer c.runMutex.Unlock()

	return c.driver.Run(ctx, spec)
}

// Bus returns the event bus so callers can subscribe to run progress
func (c *Core) Bus() *EventBus {
	return c.bus
}

// Config returns the loaded configuration
func (c *Core) Config() *config.Config {
	return c.cfg
}

// PublishEvent publishes an event to the event bus
func (c *Core) PublishEvent(eventType model.EventType, sourceID string, data interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(model.NewEvent(eventType, sourceID, data))
}

// GetSystemHealth reports the aggregate health of all registered components
func (c *Core) GetSystemHealth() model.HealthStatus {
	if c.health == nil {
		return model.HealthStatus{Status: model.StatusUninitialized}
	}
	return c.health.GetSystemHealth()
}

// sessionComponent adapts the engine session to the component interface so
// the health monitor can report on it
type sessionComponent struct {
	session *gis.Session
	BaseComponent
}

func newSessionComponent(session *gis.Session) *sessionComponent {
	return &sessionComponent{
		session:       session,
		BaseComponent: NewBaseComponent("engine_session", "Engine Session"),
	}
}

// GetStatus reports RUNNING while the session is active and STOPPED after
// release
func (s *sessionComponent) GetStatus() model.ComponentStatus {
	if s.session.Active() {
		return model.StatusRunning
	}
	return model.StatusStopped
}

// Initialize prepares the component for operation
func (s *sessionComponent) Initialize() bool { return true }

// Start begins component operation
func (s *sessionComponent) Start() bool { return true }

// Stop halts component operation
func (s *sessionComponent) Stop() bool { return true }

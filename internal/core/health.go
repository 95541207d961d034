package core

import (
	"sync"
	"time"

	"github.com/hydrosift/watershed/internal/model"
)

// HealthMonitor tracks the status of registered components
type HealthMonitor struct {
	components map[string]Component
	mutex      sync.RWMutex
	BaseComponent
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		components:    make(map[string]Component),
		BaseComponent: NewBaseComponent("health_monitor", "Health Monitor"),
	}
}

// Initialize prepares the health monitor for operation
func (m *HealthMonitor) Initialize() bool {
	m.SetStatus(model.StatusInitialized)
	return true
}

// Start begins health monitor operation
func (m *HealthMonitor) Start() bool {
	m.SetStatus(model.StatusRunning)
	return true
}

// Stop halts health monitor operation
func (m *HealthMonitor) Stop() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.components = make(map[string]Component)

	m.SetStatus(model.StatusStopped)
	return true
}

// RegisterComponent adds a component to the monitor
func (m *HealthMonitor) RegisterComponent(c Component) {
	if c == nil {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.components[c.ID()] = c
}

// GetSystemHealth reports the aggregate system health. The system is RUNNING
// only when every registered component is RUNNING; any ERROR component makes
// the system ERROR.
func (m *HealthMonitor) GetSystemHealth() model.HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	overall := model.StatusRunning
	components := make(map[string]model.HealthStatus, len(m.components))

	for id, c := range m.components {
		status := c.GetStatus()
		components[id] = model.HealthStatus{
			Status:    status,
			Timestamp: time.Now(),
		}

		switch status {
		case model.StatusError:
			overall = model.StatusError
		case model.StatusRunning:
			// no change
		default:
			if overall != model.StatusError {
				overall = status
			}
		}
	}

	return model.HealthStatus{
		Status:     overall,
		Timestamp:  time.Now(),
		Components: components,
	}
}

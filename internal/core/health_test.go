package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydrosift/watershed/internal/model"
)

type staticComponent struct {
	BaseComponent
}

func newStaticComponent(id string, status model.ComponentStatus) *staticComponent {
	c := &staticComponent{BaseComponent: NewBaseComponent(id, id)}
	c.SetStatus(status)
	return c
}

func (c *staticComponent) Initialize() bool { return true }
func (c *staticComponent) Start() bool      { return true }
func (c *staticComponent) Stop() bool       { return true }

func TestHealthMonitor(t *testing.T) {
	t.Run("all running components yield a running system", func(t *testing.T) {
		monitor := NewHealthMonitor()
		monitor.Initialize()
		monitor.Start()

		monitor.RegisterComponent(newStaticComponent("a", model.StatusRunning))
		monitor.RegisterComponent(newStaticComponent("b", model.StatusRunning))

		health := monitor.GetSystemHealth()
		assert.Equal(t, model.StatusRunning, health.Status)
		assert.Len(t, health.Components, 2)
	})

	t.Run("any error component makes the system error", func(t *testing.T) {
		monitor := NewHealthMonitor()
		monitor.Initialize()
		monitor.Start()

		monitor.RegisterComponent(newStaticComponent("a", model.StatusRunning))
		monitor.RegisterComponent(newStaticComponent("b", model.StatusError))
		monitor.RegisterComponent(newStaticComponent("c", model.StatusStopped))

		health := monitor.GetSystemHealth()
		assert.Equal(t, model.StatusError, health.Status)
	})

	t.Run("a stopped component degrades the system status", func(t *testing.T) {
		monitor := NewHealthMonitor()
		monitor.Initialize()
		monitor.Start()

		monitor.RegisterComponent(newStaticComponent("a", model.StatusRunning))
		monitor.RegisterComponent(newStaticComponent("b", model.StatusStopped))

		health := monitor.GetSystemHealth()
		assert.Equal(t, model.StatusStopped, health.Status)
	})

	t.Run("nil components are ignored", func(t *testing.T) {
		monitor := NewHealthMonitor()
		monitor.Initialize()
		monitor.Start()
		monitor.RegisterComponent(nil)

		health := monitor.GetSystemHealth()
		assert.Empty(t, health.Components)
	})
}

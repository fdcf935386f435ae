package alert

import (
	"log"
	"sync"

	"github.com/mhaile-revolts/cronosFacial/internal/store"
)

// Dispatcher fires alert plugins when the live engagement state changes.
// A state must differ from the previously observed one to trigger; a steady
// state never re-fires its alerts.
type Dispatcher struct {
	store    *store.Store
	manager  *Manager
	executor *Executor

	mu        sync.Mutex
	lastState string
}

// NewDispatcher creates a Dispatcher using the given store, plugin manager,
// and executor.
func NewDispatcher(st *store.Store, manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{
		store:    st,
		manager:  manager,
		executor: executor,
	}
}

// Observe feeds the dispatcher a new engagement observation. When the state
// transitions, every enabled alert bound to the new state is executed.
// Returns the number of plugins executed.
func (d *Dispatcher) Observe(state string, score float64) int {
	d.mu.Lock()
	if state == d.lastState {
		d.mu.Unlock()
		return 0
	}
	d.lastState = state
	d.mu.Unlock()

	return d.fire(state, score)
}

// Reset clears the transition state, so the next observation always fires.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastState = ""
}

func (d *Dispatcher) fire(state string, score float64) int {
	alerts, err := d.store.Alerts().GetByState(state)
	if err != nil {
		log.Printf("Alert lookup failed for state %s: %v", state, err)
		return 0
	}

	executed := 0
	for _, a := range alerts {
		plugin, err := d.manager.Get(a.PluginName)
		if err != nil {
			log.Printf("Alert %s: plugin %q not found", a.ID, a.PluginName)
			continue
		}

		req := &Request{
			Action: a.ActionName,
			State:  state,
			Score:  score,
			Config: a.Config,
		}

		resp, err := d.executor.Execute(plugin, req)
		if err != nil {
			log.Printf("Alert %s: plugin %q failed: %v", a.ID, a.PluginName, err)
			continue
		}
		if !resp.Success {
			log.Printf("Alert %s: plugin %q reported error: %s", a.ID, a.PluginName, resp.Error)
			continue
		}

		executed++
	}

	return executed
}

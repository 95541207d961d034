package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydrosift/watershed/internal/model"
)

// runStore tracks pipeline runs triggered through the API. Runs execute one
// at a time because the engine session is process-wide, so the store only
// ever has a single active run to attribute stage events to.
type runStore struct {
	mutex  sync.RWMutex
	runs   map[string]*model.RunRecord
	order  []string
	active string
}

// newRunStore creates an empty run store
func newRunStore() *runStore {
	return &runStore{
		runs: make(map[string]*model.RunRecord),
	}
}

// begin registers a new run and marks it active. It fails when another run
// is still in progress.
func (s *runStore) begin() (*model.RunRecord, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.active != "" {
		return nil, false
	}

	record := &model.RunRecord{
		ID:        uuid.NewString(),
		Status:    model.RunRunning,
		Stages:    make(map[model.StageID]bool),
		StartedAt: time.Now(),
	}

	s.runs[record.ID] = record
	s.order = append(s.order, record.ID)
	s.active = record.ID

	return snapshot(record), true
}

// finish records the outcome of a run and clears the active marker
func (s *runStore) finish(id string, result *model.RunResult, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, ok := s.runs[id]
	if !ok {
		return
	}

	now := time.Now()
	record.FinishedAt = &now
	if err != nil {
		record.Status = model.RunFailed
		record.Error = err.Error()
	} else {
		record.Status = model.RunCompleted
		record.Result = result
	}

	if s.active == id {
		s.active = ""
	}
}

// handleStageEvent marks a completed stage on the active run
func (s *runStore) handleStageEvent(event model.Event) {
	stage, ok := event.Data.(model.StageID)
	if !ok {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.active == "" {
		return
	}
	if record, ok := s.runs[s.active]; ok {
		record.Stages[stage] = true
	}
}

// get returns a copy of a run record
func (s *runStore) get(id string) (*model.RunRecord, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	return snapshot(record), true
}

// list returns copies of all run records in creation order
func (s *runStore) list() []*model.RunRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*model.RunRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.runs[id]))
	}
	return out
}

// snapshot copies a record so handlers never share mutable state with the
// tracker
func snapshot(record *model.RunRecord) *model.RunRecord {
	copied := *record
	copied.Stages = make(map[model.StageID]bool, len(record.Stages))
	for stage, done := range record.Stages {
		copied.Stages[stage] = done
	}
	return &copied
}

package manager

import (
	"time"

	"survivald/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{State: m.state, Err: m.err}
	if m.loaded != nil {
		info := m.loaded.info
		s.Model = &info
	}
	return s
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	now := time.Now()
	return types.StatusResponse{
		State:                 string(snap.State),
		Model:                 snap.Model,
		Error:                 snap.Err,
		PredictionsTotal:      m.predictions.Load(),
		ValidationErrorsTotal: m.validationErrs.Load(),
		PredictionErrorsTotal: m.predictErrs.Load(),
		NotReadyTotal:         m.notReady.Load(),
		UptimeSeconds:         int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:        now.Unix(),
	}
}

package service

import (
	"context"
	"time"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/models"
)

type MonitoringService struct {
	session *engine.Session
}

func NewMonitoringService(session *engine.Session) *MonitoringService {
	return &MonitoringService{session: session}
}

// GetState returns the live node snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.NodeState, error) {
	if err := ctx.Err(); err != nil {
		return models.NodeState{}, err
	}
	snap := s.session.Snapshot()
	params := paramsFromValues(snap.Values)

	st := models.NodeState{
		Params:            params,
		CurrentTimeS:      params.CurrentTime.Seconds(),
		SimulationStartS:  params.SimulationStartTime.Seconds(),
		Output:            snap.Output,
		OutputClean:       snap.OutputClean,
		PreviousOutput:    snap.PreviousOutput,
		CachedFrames:      snap.Frames,
		SimulationSupport: snap.Requirement.SimulationSupport,
		Monitored:         monitoredNames(snap.Requirement.Monitored),
		SnapshotAt:        time.Now().UTC(),
	}
	if snap.HasEvaluated {
		last := snap.LastEvaluated.Seconds()
		st.LastEvaluatedS = &last
	}
	return st, nil
}

func monitoredNames(ids []damper.ParamID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

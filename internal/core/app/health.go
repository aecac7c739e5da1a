package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Session    string            `json:"session"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Session:    s.app.SessionID,
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	world := s.app.Snapshot()
	defer world.Close()
	status.Components["world"] = fmt.Sprintf("ok (%d files)", len(world.Files()))

	if s.app.activeWatcher != nil {
		status.Components["watcher"] = "ok"
	} else {
		status.Components["watcher"] = "inactive"
	}

	if err := ctx.Err(); err != nil {
		status.Status = "degraded"
		status.Components["context"] = err.Error()
	}
	return status
}

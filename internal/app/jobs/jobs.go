// Package jobs はバックグラウンドジョブ（ハートビートと銘柄ユニバース同期）を登録します。
package jobs

import (
	"context"
	"log/slog"
	"time"

	"mock_trader/internal/platform/scheduler"
)

const (
	HeartbeatJob = "heartbeat"
	SyncJob      = "stock_universe_sync"
)

// Registrar はジョブを登録するスケジューラーのポートです。
type Registrar interface {
	Every(name string, interval time.Duration, job scheduler.Job) error
	DailyAt(name string, hour, minute int, job scheduler.Job) error
}

// Monitor exposes the state of registered jobs.
type Monitor interface {
	Status(name string) (scheduler.Status, bool)
	NextRun(name string) (time.Time, bool)
}

// Scheduler はジョブの登録と状態参照の両方を提供します。
type Scheduler interface {
	Registrar
	Monitor
}

// UniverseSyncer runs one reconciliation for the configured exchange.
type UniverseSyncer interface {
	Run(ctx context.Context) error
}

// Schedule holds the trigger settings.
type Schedule struct {
	HeartbeatInterval time.Duration
	SyncHour          int
	SyncMinute        int
}

// RegisterJobs registers the heartbeat and the daily universe sync.
func RegisterJobs(s Scheduler, sched Schedule, syncer UniverseSyncer) error {
	if err := s.Every(HeartbeatJob, sched.HeartbeatInterval, Heartbeat(s)); err != nil {
		return err
	}
	return s.DailyAt(SyncJob, sched.SyncHour, sched.SyncMinute, syncer.Run)
}

// Heartbeat は同期ジョブの直近の結果と次回実行時刻をログに出すだけのジョブです。
func Heartbeat(m Monitor) scheduler.Job {
	return func(ctx context.Context) error {
		LogSyncStatus(m)
		return nil
	}
}

// LogSyncStatus logs the sync job's last result and next trigger.
func LogSyncStatus(m Monitor) {
	attrs := []any{"job", SyncJob}
	if st, ok := m.Status(SyncJob); ok {
		attrs = append(attrs, "state", st.State, "last_result", st.LastResult, "runs", st.Runs)
		if st.LastError != "" {
			attrs = append(attrs, "last_error", st.LastError)
		}
	}
	if next, ok := m.NextRun(SyncJob); ok {
		attrs = append(attrs, "next_run", next.Format(time.RFC3339))
	}
	slog.Info("[SCHEDULED JOB] heartbeat", attrs...)
}

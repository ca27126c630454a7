// Package tempo wires the domain services together. Commands and the
// TUI consume App instead of cherry-picking raw dependencies.
package tempo

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/tracking"
	"github.com/colonyops/tempo/internal/data/stores"
	"github.com/colonyops/tempo/pkg/executil"
)

// App is the central entry point for all tempo operations.
type App struct {
	Config        *config.Config
	Tasks         *TaskService
	Tracker       *tracking.Tracker
	TaskStore     *stores.TaskStore
	Settings      *stores.SettingsStore
	Notifications *stores.NotifyStore
	Scheduler     *notify.Scheduler
}

// NewApp constructs an App with blob-backed stores rooted at the
// configured data directory.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	blob := stores.NewFileBlob(cfg.BlobDir(), log)

	taskStore := stores.NewTaskStore(blob, log)
	settings := stores.NewSettingsStore(blob, log)
	notifications := stores.NewNotifyStore(blob, log)

	tracker := tracking.New(taskStore, log)
	engine := notify.NewEngine(log)

	exec := &executil.RealExecutor{}
	scheduler := notify.NewScheduler(
		engine,
		taskStore,
		settings,
		notifications,
		NewSoundSink(os.Stdout),
		NewPushSink(exec, cfg.PushCommand, log),
		log,
	).WithInterval(cfg.EvalInterval())

	tasks := NewTaskService(taskStore, settings, scheduler, log)

	return &App{
		Config:        cfg,
		Tasks:         tasks,
		Tracker:       tracker,
		TaskStore:     taskStore,
		Settings:      settings,
		Notifications: notifications,
		Scheduler:     scheduler,
	}
}

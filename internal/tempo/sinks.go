package tempo

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/pkg/executil"
)

const pushTimeout = 5 * time.Second

// SoundSink rings the terminal bell. Delivery never fails.
type SoundSink struct {
	w io.Writer
}

func NewSoundSink(w io.Writer) *SoundSink {
	return &SoundSink{w: w}
}

func (s *SoundSink) Deliver(_ context.Context, _ notify.Notification) {
	fmt.Fprint(s.w, "\a")
}

// PushSink delivers notifications through the desktop notifier. A
// configured command template takes precedence; otherwise the
// platform's native notifier is used when present on PATH. Delivery
// failures are logged and swallowed, a broken notifier must not affect
// the engine.
type PushSink struct {
	exec    executil.Executor
	command string
	log     zerolog.Logger
}

func NewPushSink(exec executil.Executor, command string, log zerolog.Logger) *PushSink {
	return &PushSink{
		exec:    exec,
		command: command,
		log:     log.With().Str("cmp", "push-sink").Logger(),
	}
}

func (s *PushSink) Deliver(ctx context.Context, n notify.Notification) {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	title := pushTitle(n)

	cmd, args, ok := s.resolve(title, n.Message)
	if !ok {
		s.log.Debug().Msg("no desktop notifier available")
		return
	}

	if _, err := s.exec.Run(ctx, cmd, args...); err != nil {
		s.log.Debug().Err(err).Str("cmd", cmd).Msg("push delivery failed")
	}
}

func (s *PushSink) resolve(title, body string) (string, []string, bool) {
	if s.command != "" {
		parts := strings.Fields(s.command)
		return parts[0], append(parts[1:], title, body), true
	}

	switch runtime.GOOS {
	case "darwin":
		if s.exec.LookPath("osascript") {
			script := fmt.Sprintf("display notification %q with title %q", body, title)
			return "osascript", []string{"-e", script}, true
		}
	default:
		if s.exec.LookPath("notify-send") {
			return "notify-send", []string{title, body}, true
		}
	}
	return "", nil, false
}

func pushTitle(n notify.Notification) string {
	switch n.Type {
	case notify.TypeReminder:
		return "Upcoming task"
	case notify.TypeOverdue:
		return "Overdue task"
	case notify.TypeProgress:
		return "Progress update"
	case notify.TypeBreak:
		return "Break time"
	case notify.TypeCompletion:
		return "Task completed"
	case notify.TypeSummary:
		return "Daily summary"
	default:
		return "Tempo"
	}
}

package page

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// ScheduleReload reloads the dataset on a cron schedule until the returned
// stop function is called. A reload still running when the next one is due
// is not overlapped. stop waits for a running reload to finish.
func (p *Page) ScheduleReload(ctx context.Context, schedule string) (stop func(), err error) {
	logger := cronLogger{p.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	_, err = c.AddFunc(schedule, func() {
		// Load logs and counts its own failures.
		_ = p.Load(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("parse reload schedule %q: %w", schedule, err)
	}

	c.Start()
	p.logger.Info("dataset reload scheduled", "schedule", schedule)
	return func() { <-c.Stop().Done() }, nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

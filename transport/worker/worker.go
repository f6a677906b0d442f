package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
	"github.com/X1ag/ShuttleScheduler/transport/httpapi"
)

// DigestSink receives every digest notice the worker produces.
type DigestSink interface {
	Broadcast(msg httpapi.DigestMessage)
}

type Config struct {
	SweepInterval  time.Duration
	DigestInterval time.Duration
	// ClockInterval is how often daily jobs are checked.
	ClockInterval  time.Duration
	DriversChatID  int64
	StudentsChatID int64
	ResetAt        domain.TimeOfDay
	Hours          domain.ServiceHours

	WorkdayStartDrivers  string
	WorkdayEndDrivers    string
	WorkdayStartStudents string
	WorkdayEndStudents   string
}

type Worker struct {
	rides    *usecase.RideUsecase
	notifier domain.Notifier
	sink     DigestSink
	cfg      Config
	logger   *slog.Logger

	mu   sync.Mutex
	jobs []*dailyJob
}

// dailyJob runs once per calendar day when the local time reaches at.
type dailyJob struct {
	name         string
	at           domain.TimeOfDay
	weekdaysOnly bool
	run          func(ctx context.Context) error
	lastDay      string
}

func NewWorker(rides *usecase.RideUsecase, notifier domain.Notifier, sink DigestSink, cfg Config, logger *slog.Logger) *Worker {
	if cfg.ClockInterval <= 0 {
		cfg.ClockInterval = 30 * time.Second
	}
	w := &Worker{
		rides:    rides,
		notifier: notifier,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
	}
	w.jobs = []*dailyJob{
		{name: "reset", at: cfg.ResetAt, run: w.rides.Reset},
		{name: "workday_start", at: cfg.Hours.Start, weekdaysOnly: !cfg.Hours.Weekends, run: func(ctx context.Context) error {
			return w.announce(ctx, cfg.WorkdayStartDrivers, cfg.WorkdayStartStudents)
		}},
		{name: "workday_end", at: cfg.Hours.End, weekdaysOnly: !cfg.Hours.Weekends, run: func(ctx context.Context) error {
			return w.announce(ctx, cfg.WorkdayEndDrivers, cfg.WorkdayEndStudents)
		}},
	}
	// Jobs whose time already passed today wait for tomorrow.
	w.markPassed(rides.Now())
	return w
}

// Start runs the periodic loops until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go w.loop(ctx, "sweep", w.cfg.SweepInterval, w.Sweep)
	go w.loop(ctx, "digest", w.cfg.DigestInterval, w.Digest)
	go w.loop(ctx, "daily", w.cfg.ClockInterval, w.RunDaily)
}

func (w *Worker) loop(ctx context.Context, name string, every time.Duration, tick func(context.Context)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	w.logger.Info("worker loop started", "loop", name, "interval", every.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker loop stopped", "loop", name)
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

func (w *Worker) Sweep(ctx context.Context) {
	n, err := w.rides.SweepAutoComplete(ctx, w.rides.Now())
	if err != nil {
		w.logger.Error("sweep failed", "error", err)
		return
	}
	if n > 0 {
		w.logger.Info("sweep finished", "completed", n)
	}
}

// Digest sends the current digest to the drivers chat and the dashboards.
// Outside service hours it does nothing.
func (w *Worker) Digest(ctx context.Context) {
	now := w.rides.Now()
	if w.cfg.Hours.State(now) != domain.HoursOpen {
		w.logger.Debug("digest skipped outside service hours")
		return
	}
	notice, err := w.rides.BuildDigest(ctx, now)
	if err != nil {
		w.logger.Error("build digest failed", "error", err)
		return
	}
	if w.sink != nil {
		w.sink.Broadcast(httpapi.NewDigestMessage(notice, now))
	}
	if w.cfg.DriversChatID == 0 {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := w.notifier.Notify(sendCtx, w.cfg.DriversChatID, notice.Text); err != nil {
		w.logger.Error("send digest", "chat_id", w.cfg.DriversChatID, "error", err)
	}
}

func (w *Worker) RunDaily(ctx context.Context) {
	now := w.rides.Now()
	local := w.local(now)
	day := local.Format(time.DateOnly)
	tod := domain.TimeOfDayFrom(local, nil)
	weekend := local.Weekday() == time.Saturday || local.Weekday() == time.Sunday

	w.mu.Lock()
	var due []*dailyJob
	for _, j := range w.jobs {
		if j.lastDay == day || tod < j.at {
			continue
		}
		j.lastDay = day
		if j.weekdaysOnly && weekend {
			continue
		}
		due = append(due, j)
	}
	w.mu.Unlock()

	for _, j := range due {
		if err := j.run(ctx); err != nil {
			w.logger.Error("daily job failed", "job", j.name, "error", err)
			continue
		}
		w.logger.Info("daily job done", "job", j.name, "day", day)
	}
}

func (w *Worker) markPassed(now time.Time) {
	local := w.local(now)
	day := local.Format(time.DateOnly)
	tod := domain.TimeOfDayFrom(local, nil)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, j := range w.jobs {
		if tod >= j.at {
			j.lastDay = day
		}
	}
}

func (w *Worker) local(now time.Time) time.Time {
	if w.cfg.Hours.Location != nil {
		return now.In(w.cfg.Hours.Location)
	}
	return now
}

func (w *Worker) announce(ctx context.Context, drivers, students string) error {
	var firstErr error
	for _, m := range []struct {
		chat int64
		text string
	}{{w.cfg.DriversChatID, drivers}, {w.cfg.StudentsChatID, students}} {
		if m.chat == 0 || m.text == "" {
			continue
		}
		if err := w.notifier.Notify(ctx, m.chat, m.text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

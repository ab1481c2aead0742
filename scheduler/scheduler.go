package scheduler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"cpi-scraper/storage"
	"cpi-scraper/utils"
)

// checkSpec fires the daily check at 09:00; the day-of-month gate is applied
// in Go because the scheduled days (4, 10, 17, 24) are not a cron-expressible
// set together with the already-ran-today guard.
const checkSpec = "0 9 * * *"

// Scheduler triggers the collection run on the scheduled days of each month,
// at most once per day. The last completed run date is kept in a guard file
// so a restart on a scheduled day does not trigger a second run.
type Scheduler struct {
	cron        *cron.Cron
	logger      *utils.Logger
	lastRunPath string
	run         func() error
}

// New creates a Scheduler around the given run function.
func New(logger *utils.Logger, lastRunPath string, run func() error) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		logger:      logger,
		lastRunPath: lastRunPath,
		run:         run,
	}
}

// Start begins the daily checks and blocks until Stop is called. If started
// on a scheduled day after 09:00 with no run recorded yet, it runs
// immediately instead of waiting for the next day's check.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(checkSpec, s.checkAndRun); err != nil {
		return err
	}

	s.logger.Info("[scheduler] Started — runs on days %v of each month at 09:00", storage.ScheduledDays)

	now := time.Now()
	if isScheduledDay(now) && now.Hour() >= 9 {
		s.checkAndRun()
	} else {
		s.logger.Info("[scheduler] Next run: day %d at 09:00", nextScheduledDay(now))
	}

	s.cron.Run()
	return nil
}

// Stop halts the daily checks. An in-flight run is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("[scheduler] Stopped")
}

func (s *Scheduler) checkAndRun() {
	now := time.Now()
	if !isScheduledDay(now) {
		return
	}

	today := now.Format("2006-01-02")
	if s.lastRunDate() == today {
		s.logger.Info("[scheduler] Already ran today, skipping")
		return
	}

	s.logger.Info("[scheduler] Scheduled day %d — starting run", now.Day())
	if err := s.run(); err != nil {
		s.logger.Error("[scheduler] Run failed: %v", err)
		return
	}

	if err := s.recordRun(today); err != nil {
		s.logger.Warn("[scheduler] Could not record run date: %v", err)
	}
}

// lastRunDate reads the guard file; a missing or unreadable file means no
// run is recorded.
func (s *Scheduler) lastRunDate() string {
	data, err := os.ReadFile(s.lastRunPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Scheduler) recordRun(date string) error {
	if dir := filepath.Dir(s.lastRunPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.lastRunPath, []byte(date), 0o644)
}

// weeklySpec fires the hotel collection every Monday at 09:00.
const weeklySpec = "0 9 * * 1"

// Weekly triggers a run once a week. Unlike the monthly Scheduler it needs
// no guard file: the cron spec alone pins the run to one firing per week.
type Weekly struct {
	cron   *cron.Cron
	logger *utils.Logger
	run    func() error
}

// NewWeekly creates a weekly scheduler around the given run function.
func NewWeekly(logger *utils.Logger, run func() error) *Weekly {
	return &Weekly{cron: cron.New(), logger: logger, run: run}
}

// Start begins the weekly firing and blocks until Stop is called.
func (w *Weekly) Start() error {
	if _, err := w.cron.AddFunc(weeklySpec, func() {
		w.logger.Info("[scheduler] Weekly run starting")
		if err := w.run(); err != nil {
			w.logger.Error("[scheduler] Weekly run failed: %v", err)
		}
	}); err != nil {
		return err
	}
	w.logger.Info("[scheduler] Started — runs every Monday at 09:00")
	w.cron.Run()
	return nil
}

// Stop halts the weekly firing. An in-flight run is not interrupted.
func (w *Weekly) Stop() {
	w.cron.Stop()
	w.logger.Info("[scheduler] Stopped")
}

func isScheduledDay(t time.Time) bool {
	for _, d := range storage.ScheduledDays {
		if t.Day() == d {
			return true
		}
	}
	return false
}

// nextScheduledDay returns the next scheduled day-of-month after now; past
// the 24th it wraps to the 4th of next month.
func nextScheduledDay(now time.Time) int {
	for _, d := range storage.ScheduledDays {
		if d > now.Day() {
			return d
		}
	}
	return storage.ScheduledDays[0]
}

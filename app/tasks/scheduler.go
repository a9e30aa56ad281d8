package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// The poll granularity of the scheduling loop. Every tick each job's
// next-due time is compared against the clock.
const tickInterval = 60 * time.Second

const (
	cleanupHour  = 3
	statsWeekday = time.Monday
	statsHour    = 9
)

type job struct {
	name string
	task TaskInterface
	next time.Time
	// recordFailure controls whether a job error is written to the
	// delivery log as a failed cycle.
	recordFailure bool
	reschedule    func(now time.Time) time.Time
}

// Scheduler owns an explicit job table and advances it on a fixed tick.
// All jobs run sequentially on one goroutine, so no two jobs ever overlap;
// a long cycle delays, but never races, the next due job.
type Scheduler struct {
	cycleTask   TaskInterface
	deliveryLog DeliveryLogger

	jobs   []*job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cycle, cleanup, stats TaskInterface, deliveryLog DeliveryLogger, updateInterval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	return &Scheduler{
		cycleTask:   cycle,
		deliveryLog: deliveryLog,
		ctx:         ctx,
		cancel:      cancel,
		jobs: []*job{
			{
				name:          "process_cycle",
				task:          cycle,
				next:          now, // first cycle runs immediately at startup
				recordFailure: true,
				reschedule: func(now time.Time) time.Time {
					return now.Add(updateInterval)
				},
			},
			{
				name: "cleanup",
				task: cleanup,
				next: nextDaily(now, cleanupHour, 0),
				reschedule: func(now time.Time) time.Time {
					return nextDaily(now, cleanupHour, 0)
				},
			},
			{
				name: "stats_summary",
				task: stats,
				next: nextWeekly(now, statsWeekday, statsHour, 0),
				reschedule: func(now time.Time) time.Time {
					return nextWeekly(now, statsWeekday, statsHour, 0)
				},
			},
		},
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.runDueJobs(time.Now())

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case now := <-ticker.C:
				s.runDueJobs(now)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current iteration to finish.
// A job already in progress runs to completion before shutdown takes
// effect; there is no mid-cycle cancellation point.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// RunOnce executes exactly one full ingestion cycle synchronously, for
// manual invocation. Must not be called while the continuous loop is
// running.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.cycleTask.Start()
	return s.cycleTask.Execute(ctx)
}

func (s *Scheduler) runDueJobs(now time.Time) {
	for _, j := range s.jobs {
		if now.Before(j.next) {
			continue
		}
		s.runJob(j)
		j.next = j.reschedule(time.Now())
	}
}

// runJob contains every job failure: the error is logged and, for the
// ingestion cycle, recorded as a failed delivery. The scheduler itself is
// never terminated by a job error.
func (s *Scheduler) runJob(j *job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Job panicked", "job", j.name, "panic", r)
			if j.recordFailure {
				s.recordFailure(fmt.Sprintf("panic: %v", r))
			}
		}
	}()

	j.task.Start()

	if err := j.task.Execute(s.ctx); err != nil {
		slog.Error("Job failed", "job", j.name, "duration", j.task.GetDuration().String(), "error", err)
		if j.recordFailure {
			s.recordFailure(err.Error())
		}
		return
	}

	slog.Debug("Job finished", "job", j.name, "duration", j.task.GetDuration().String())
}

func (s *Scheduler) recordFailure(message string) {
	if err := s.deliveryLog.Log(0, false, message); err != nil {
		slog.Error("Failed to record cycle failure", "error", err)
	}
}

func nextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/utils"
)

// JobFunc is a unit of scheduled work
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	spec    string
	entryID cron.EntryID
	run     JobFunc
}

// Scheduler runs named cron jobs. Seconds are part of the spec and a job
// never overlaps with itself. With a Locker configured, only one replica
// runs a given tick.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	lockTTL time.Duration
	timeout time.Duration

	jobs    map[string]*job
	jobsMux sync.RWMutex
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocker makes jobs acquire a shared lock before running
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithTimeout bounds each job run
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func NewScheduler(opts ...Option) *Scheduler {
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		lockTTL: 10 * time.Minute,
		timeout: 30 * time.Minute,
		jobs:    make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Start() {
	log.Println("⏰ Starting scheduler...")
	s.cron.Start()
	log.Printf("✅ Scheduler started with %d job(s)", len(s.Jobs()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	log.Println("⏰ Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Println("✅ Scheduler stopped")
}

// AddJob registers or replaces a job. spec is a 6-field cron expression
// ("0 0 * * * *" is every hour on the hour).
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.entryID)
		delete(s.jobs, name)
	}

	j := &job{name: name, spec: spec, run: fn}
	entryID, err := s.cron.AddFunc(spec, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}
	j.entryID = entryID
	s.jobs[name] = j

	log.Printf("   ✅ Scheduled job %s: %s", name, spec)
	return nil
}

func (s *Scheduler) RemoveJob(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if j, ok := s.jobs[name]; ok {
		s.cron.Remove(j.entryID)
		delete(s.jobs, name)
		log.Printf("   ✅ Removed scheduled job: %s", name)
	}
}

// Jobs lists registered job names in order.
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow runs a job synchronously outside its schedule. It still honours
// the shared lock.
func (s *Scheduler) RunNow(name string) error {
	s.jobsMux.RLock()
	j, ok := s.jobs[name]
	s.jobsMux.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	return s.execute(j)
}

func (s *Scheduler) execute(j *job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, "scheduler:"+j.name, s.lockTTL)
		if err != nil {
			utils.LogError("scheduler lock failed", err, map[string]interface{}{"job": j.name})
			return err
		}
		if !acquired {
			utils.LogInfo("scheduler job held by another instance", map[string]interface{}{"job": j.name})
			return nil
		}
		defer release()
	}

	start := time.Now()
	err := j.run(ctx)
	fields := map[string]interface{}{"job": j.name, "duration_ms": time.Since(start).Milliseconds()}
	if err != nil {
		utils.LogError("scheduler job failed", err, fields)
		return err
	}
	utils.LogInfo("scheduler job finished", fields)
	return nil
}

// cronLogger forwards robfig/cron's logs to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// per-tick wake/run noise is only useful when debugging
	if msg == "wake" || msg == "run" || msg == "schedule" {
		return
	}
	utils.LogInfo("cron: "+msg, kv(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	utils.LogError("cron: "+msg, err, kv(keysAndValues))
}

func kv(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

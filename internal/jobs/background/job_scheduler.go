package background

import (
	"context"
	"log"
	"time"

	"vatrentals/internal/analytics"
	"vatrentals/internal/caching"
	"vatrentals/internal/services"

	"github.com/go-co-op/gocron/v2"
)

const cacheCleanupInterval = time.Hour

// JobScheduler manages the periodic refresh of derived data: the
// reminder feed and the owner dashboard.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	analyticsSvc analytics.Service
	reminderSvc  services.ReminderService
	cacheSvc     caching.CacheService
	jobs         map[string]gocron.Job

	reminderInterval  time.Duration
	dashboardInterval time.Duration
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(analyticsSvc analytics.Service, reminderSvc services.ReminderService,
	cacheSvc caching.CacheService, reminderInterval, dashboardInterval time.Duration) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:         scheduler,
		analyticsSvc:      analyticsSvc,
		reminderSvc:       reminderSvc,
		cacheSvc:          cacheSvc,
		jobs:              make(map[string]gocron.Job),
		reminderInterval:  reminderInterval,
		dashboardInterval: dashboardInterval,
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	reminderJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.reminderInterval),
		gocron.NewTask(js.refreshReminderFeed, context.Background()),
		gocron.WithName("reminder-feed-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reminder feed job: %v", err)
	} else {
		js.jobs["reminder-feed-refresh"] = reminderJob
	}

	dashboardJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.dashboardInterval),
		gocron.NewTask(js.refreshDashboard, context.Background()),
		gocron.WithName("dashboard-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create dashboard refresh job: %v", err)
	} else {
		js.jobs["dashboard-refresh"] = dashboardJob
	}

	cleanupJob, err := js.scheduler.NewJob(
		gocron.DurationJob(cacheCleanupInterval),
		gocron.NewTask(js.cleanupCache, context.Background()),
		gocron.WithName("cache-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create cache cleanup job: %v", err)
	} else {
		js.jobs["cache-cleanup"] = cleanupJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// refreshReminderFeed recomputes the due/overdue reminder feed
func (js *JobScheduler) refreshReminderFeed(ctx context.Context) error {
	feed, err := js.reminderSvc.RefreshFeed(ctx)
	if err != nil {
		log.Printf("Failed to refresh reminder feed: %v", err)
		return err
	}
	log.Printf("Refreshed reminder feed: %d reminder(s)", len(feed))
	return nil
}

// refreshDashboard recomputes the owner dashboard
func (js *JobScheduler) refreshDashboard(ctx context.Context) error {
	if _, err := js.analyticsSvc.RefreshDashboard(ctx); err != nil {
		log.Printf("Failed to refresh dashboard: %v", err)
		return err
	}
	log.Printf("Refreshed analytics dashboard")
	return nil
}

// cleanupCache drops the derived caches so the next read recomputes
// them. TTLs already bound staleness; this sweeps keys whose inputs
// changed without an invalidation, such as direct DB edits.
func (js *JobScheduler) cleanupCache(ctx context.Context) error {
	if err := js.cacheSvc.InvalidateDerived(ctx); err != nil {
		log.Printf("Failed to clean derived caches: %v", err)
		return err
	}
	return nil
}

// GetJobStatus reports the registered jobs and their next run times.
// The job set is fixed at construction, so no locking is needed.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	jobs := make(map[string]interface{}, len(js.jobs))
	for name, job := range js.jobs {
		info := map[string]interface{}{}
		if nextRun, err := job.NextRun(); err == nil {
			info["next_run"] = nextRun
		}
		if lastRun, err := job.LastRun(); err == nil && !lastRun.IsZero() {
			info["last_run"] = lastRun
		}
		jobs[name] = info
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"leadrunner/platform/config"
)

// Client enqueues delayed tasks. A nil Client is a no-op, so callers can wire
// it unconditionally and let configuration decide.
type Client struct {
	client           *asynq.Client
	queue            string
	followUpDelay    time.Duration
	reminderLeadTime time.Duration
	now              func() time.Time
}

// NewClient creates a scheduler client backed by Redis.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client:           asynq.NewClient(opt),
		queue:            queue,
		followUpDelay:    cfg.GetQuoteFollowUpDelay(),
		reminderLeadTime: cfg.GetReminderLeadTime(),
		now:              time.Now,
	}, nil
}

// Close releases the underlying asynq client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleQuoteFollowUp enqueues a follow-up nudge after the configured delay.
func (c *Client) ScheduleQuoteFollowUp(ctx context.Context, leadID string, price float64) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewQuoteFollowUpTask(QuoteFollowUpPayload{LeadID: leadID, Price: price})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessIn(c.followUpDelay), asynq.Queue(c.queue))
	return err
}

// ScheduleAppointmentReminder enqueues a reminder ahead of the booked start.
// Bookings closer than the lead time get no reminder.
func (c *Client) ScheduleAppointmentReminder(ctx context.Context, leadID, eventID string, startsAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	runAt := startsAt.Add(-c.reminderLeadTime)
	if !runAt.After(c.now()) {
		return nil
	}

	task, err := NewAppointmentReminderTask(AppointmentReminderPayload{
		LeadID:   leadID,
		EventID:  eventID,
		StartsAt: startsAt,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

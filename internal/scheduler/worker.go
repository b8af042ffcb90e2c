package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

// MessageSender delivers a text to the customer behind a lead.
type MessageSender interface {
	SendMessage(ctx context.Context, leadID, content string) error
}

// Worker consumes delayed tasks and turns them into outbound messages.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	sender       MessageSender
	businessName string
	log          *logger.Logger
}

// NewWorker creates a scheduler worker bound to the configured queue.
func NewWorker(cfg config.SchedulerConfig, business config.BusinessConfig, sender MessageSender, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		sender:       sender,
		businessName: business.GetBusinessName(),
		log:          log,
	}

	mux.HandleFunc(TaskQuoteFollowUp, w.handleQuoteFollowUp)
	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)

	return w, nil
}

func (w *Worker) handleQuoteFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteFollowUpPayload(task)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`Hi! Just following up on the quote of $%.2f I sent over.

If you have any questions or would like to adjust the scope, I'm happy to talk it through.

Best regards,
%s`, payload.Price, w.businessName)

	if err := w.sender.SendMessage(ctx, payload.LeadID, text); err != nil {
		return err
	}
	w.log.Info("quote follow-up sent", "lead_id", payload.LeadID)
	return nil
}

func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`Just a friendly reminder: your appointment is coming up on %s.

If anything changed on your side, let me know and we can reschedule.

Best regards,
%s`, payload.StartsAt.Format("Monday, January 02 at 03:04 PM"), w.businessName)

	if err := w.sender.SendMessage(ctx, payload.LeadID, text); err != nil {
		return err
	}
	w.log.Info("appointment reminder sent", "lead_id", payload.LeadID, "event_id", payload.EventID)
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

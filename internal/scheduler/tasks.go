// Package scheduler provides delayed follow-up work via asynq: quote
// follow-ups after a configurable delay and appointment reminders ahead of
// the booked start time.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskQuoteFollowUp = "quotes.followup"

const TaskAppointmentReminder = "appointments.reminder"

type QuoteFollowUpPayload struct {
	LeadID string  `json:"leadId"`
	Price  float64 `json:"price"`
}

type AppointmentReminderPayload struct {
	LeadID   string    `json:"leadId"`
	EventID  string    `json:"eventId"`
	StartsAt time.Time `json:"startsAt"`
}

func NewQuoteFollowUpTask(payload QuoteFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteFollowUp, data), nil
}

func ParseQuoteFollowUpPayload(task *asynq.Task) (QuoteFollowUpPayload, error) {
	var payload QuoteFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteFollowUpPayload{}, err
	}
	return payload, nil
}

func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

func ParseAppointmentReminderPayload(task *asynq.Task) (AppointmentReminderPayload, error) {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AppointmentReminderPayload{}, err
	}
	return payload, nil
}

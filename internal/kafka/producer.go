package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-attendance/internal/config"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	Logger *logger.Logger

	// mock mode logs payloads instead of writing to the broker
	mock bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{
		Topics: cfg.Topics,
		Logger: log,
		mock:   cfg.MockMode || !cfg.Enabled,
	}
	if p.mock {
		log.Warn("KAFKA", "Producer running in mock mode, events are logged only")
		return p
	}

	p.Writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return p
}

func (p *Producer) Publish(topic, key string, value []byte) error {
	if p.mock {
		p.Logger.LogKafka("MOCK", topic, string(value))
		return nil
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

type eventStateMessage struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	At        time.Time `json:"at"`
}

// PublishEventOpened streams a CLOSED→OPEN transition.
func (p *Producer) PublishEventOpened(event models.Event, at time.Time) error {
	return p.publishState(p.Topics.EventOpened, event, models.StateOpen, at)
}

// PublishEventClosed streams an OPEN→CLOSED transition.
func (p *Producer) PublishEventClosed(event models.Event, at time.Time) error {
	return p.publishState(p.Topics.EventClosed, event, models.StateClosed, at)
}

func (p *Producer) publishState(topic string, event models.Event, state string, at time.Time) error {
	msg := eventStateMessage{
		EventID:   event.ID,
		Title:     event.Title,
		State:     state,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		At:        at,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal state message: %w", err)
	}
	return p.Publish(topic, event.ID, value)
}

type attendanceMessage struct {
	AttendanceID  string    `json:"attendance_id"`
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// PublishAttendanceRecorded streams a successful confirmation.
func (p *Producer) PublishAttendanceRecorded(att models.Attendance) error {
	msg := attendanceMessage{
		AttendanceID:  att.ID,
		EventID:       att.EventID,
		ParticipantID: att.ParticipantID,
		ConfirmedAt:   att.ConfirmedAt,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal attendance message: %w", err)
	}
	return p.Publish(p.Topics.AttendanceRecorded, att.EventID, value)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}

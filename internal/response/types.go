package response

import (
	"time"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/service"
)

// Platform is reported by the status endpoint.
const Platform = "render"

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse reports an ok status at now.
func NewHealthResponse(now time.Time) HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

// MessageDTO is a public-facing representation of a message
// used in API responses. It decouples the wire format from
// the domain entity and plays nicely with Swagger.
type MessageDTO struct {
	ID               string    `json:"id"`
	TwilioMessageSid *string   `json:"twilioMessageSid"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Body             string    `json:"body"`
	Direction        string    `json:"direction"`
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
}

// FromDomainMessage converts one domain message into its DTO.
func FromDomainMessage(m *domain.Message) MessageDTO {
	dto := MessageDTO{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Body:      m.Body,
		Direction: string(m.Direction),
		Status:    string(m.Status),
		Timestamp: m.Timestamp,
	}
	if m.ProviderMessageID != "" {
		sid := m.ProviderMessageID
		dto.TwilioMessageSid = &sid
	}
	return dto
}

// FromDomainMessages converts domain messages into DTOs
// for use in HTTP responses. The result is never nil.
func FromDomainMessages(msgs []*domain.Message) []MessageDTO {
	out := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		out[i] = FromDomainMessage(m)
	}
	return out
}

type StatsDTO struct {
	TotalReceived24h int64 `json:"totalReceived24h"`
	TotalSent24h     int64 `json:"totalSent24h"`
	TotalReceived7d  int64 `json:"totalReceived7d"`
	TotalSent7d      int64 `json:"totalSent7d"`
}

func FromDomainStats(s domain.Stats) StatsDTO {
	return StatsDTO{
		TotalReceived24h: s.TotalReceived24h,
		TotalSent24h:     s.TotalSent24h,
		TotalReceived7d:  s.TotalReceived7d,
		TotalSent7d:      s.TotalSent7d,
	}
}

type ConfigDTO struct {
	ID                   string `json:"id"`
	AutoReplyEnabled     bool   `json:"autoReplyEnabled"`
	AutoReplyMessage     string `json:"autoReplyMessage"`
	ResponseDelaySeconds int    `json:"responseDelaySeconds"`
}

func FromDomainConfig(c botconfig.Config) ConfigDTO {
	return ConfigDTO{
		ID:                   c.ID,
		AutoReplyEnabled:     c.AutoReplyEnabled,
		AutoReplyMessage:     c.AutoReplyMessage,
		ResponseDelaySeconds: c.ResponseDelaySeconds,
	}
}

// StatusDTO describes the provider connection.
type StatusDTO struct {
	Connected   bool       `json:"connected"`
	Platform    string     `json:"platform"`
	Message     string     `json:"message"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Error       string     `json:"error,omitempty"`
	CheckedAt   *time.Time `json:"checkedAt,omitempty"`
}

func FromProviderStatus(s service.ProviderStatus) StatusDTO {
	return StatusDTO{
		Connected:   s.Connected,
		Platform:    Platform,
		Message:     s.Message,
		PhoneNumber: s.PhoneNumber,
		Error:       s.Error,
		CheckedAt:   s.CheckedAt,
	}
}

package messagegorm

import (
	"github.com/oggyb/wa-autoreply/internal/domain/message"
)

// toDomain maps a GORM MessageModel to a domain-level Message.
func toDomain(m *MessageModel) *message.Message {
	out := &message.Message{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Body:      m.Body,
		Direction: message.Direction(m.Direction),
		Status:    message.Status(m.Status),
		Timestamp: m.CreatedAt,
	}
	if m.ProviderMessageID != nil {
		out.ProviderMessageID = *m.ProviderMessageID
	}
	return out
}

// toDomainMany maps a slice of MessageModel to a slice of domain Messages.
func toDomainMany(models []MessageModel) []*message.Message {
	out := make([]*message.Message, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

// fromDomain maps a domain-level Message to a GORM MessageModel.
// An empty provider id is stored as NULL.
func fromDomain(d *message.Message) *MessageModel {
	m := &MessageModel{
		ID:        d.ID,
		From:      d.From,
		To:        d.To,
		Body:      d.Body,
		Direction: string(d.Direction),
		Status:    string(d.Status),
		CreatedAt: d.Timestamp,
	}
	if d.ProviderMessageID != "" {
		sid := d.ProviderMessageID
		m.ProviderMessageID = &sid
	}
	return m
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/wa-autoreply/internal/metrics"
	"github.com/oggyb/wa-autoreply/internal/whatsapp"
)

// StubStatusMessage is reported before the provider has been probed.
const StubStatusMessage = "Twilio webhook active"

// ProviderStatus is what the dashboard shows about the provider connection.
type ProviderStatus struct {
	Connected   bool
	PhoneNumber string
	Message     string
	Error       string
	CheckedAt   *time.Time
}

// StatusService probes the messaging provider and remembers the result.
type StatusService interface {
	// Run performs one probe. It satisfies scheduler.Task.
	Run(ctx context.Context) error
	Status() ProviderStatus
}

type statusService struct {
	client whatsapp.Client
	log    *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *ProviderStatus
}

func NewStatusService(client whatsapp.Client, log *slog.Logger) StatusService {
	if log == nil {
		log = slog.Default()
	}
	return &statusService{
		client: client,
		log:    log.With("component", "status"),
		now:    time.Now,
	}
}

// Run checks the provider. A reachable API is connected; so is an
// account that has credentials but could not be verified right now.
func (s *statusService) Run(ctx context.Context) error {
	healthErr := s.client.Health(ctx)
	phone, phoneErr := s.client.PhoneNumber(ctx)

	now := s.now()
	st := ProviderStatus{CheckedAt: &now, PhoneNumber: phone}

	switch {
	case healthErr == nil:
		st.Connected = true
		st.Message = "Twilio connected"
	case phoneErr == nil && phone != "" && !errors.Is(healthErr, whatsapp.ErrNotConfigured):
		st.Connected = true
		st.Message = "Twilio credentials present, API not verified"
		st.Error = healthErr.Error()
	default:
		st.Message = "Twilio not connected"
		st.Error = healthErr.Error()
	}

	if st.Connected {
		metrics.ProviderConnected.Set(1)
	} else {
		metrics.ProviderConnected.Set(0)
	}

	s.mu.Lock()
	s.last = &st
	s.mu.Unlock()

	if healthErr != nil {
		s.log.Warn("provider health probe failed", "connected", st.Connected, "error", healthErr)
		return healthErr
	}
	s.log.Debug("provider health probe ok")
	return nil
}

func (s *statusService) Status() ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return ProviderStatus{Connected: true, Message: StubStatusMessage}
	}
	return *s.last
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/wa-autoreply/internal/cache"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/metrics"
	"github.com/oggyb/wa-autoreply/internal/whatsapp"
)

// sentReplyTTL is how long a provider sid stays resolvable in the cache.
const sentReplyTTL = 24 * time.Hour

// InboundMessage is a validated provider callback.
type InboundMessage struct {
	From       string
	To         string
	Body       string
	MessageSID string
}

// AutoReplyService stores inbound messages and answers them in the
// background according to the bot configuration.
type AutoReplyService interface {
	// Receive persists an inbound message.
	Receive(ctx context.Context, in InboundMessage) (*domain.Message, error)

	// ScheduleReply starts the auto-reply for inbound in its own goroutine
	// and returns immediately. The outcome is only logged and recorded.
	ScheduleReply(inbound *domain.Message)

	// Shutdown waits for in-flight replies. When ctx expires first, pending
	// delays are aborted and ctx.Err() is returned. Replies scheduled after
	// Shutdown has been called are dropped.
	Shutdown(ctx context.Context) error
}

type autoReplyService struct {
	repo    domain.Repository
	cfgRepo botconfig.Repository
	client  whatsapp.Client
	cache   cache.Cache
	log     *slog.Logger

	sendTimeout time.Duration
	sleep       func(ctx context.Context, d time.Duration) error

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAutoReplyService wires the dispatcher. c may be nil when no cache is
// configured; sendTimeout <= 0 falls back to 15s.
func NewAutoReplyService(
	repo domain.Repository,
	cfgRepo botconfig.Repository,
	client whatsapp.Client,
	c cache.Cache,
	log *slog.Logger,
	sendTimeout time.Duration,
) AutoReplyService {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &autoReplyService{
		repo:        repo,
		cfgRepo:     cfgRepo,
		client:      client,
		cache:       c,
		log:         log.With("component", "autoreply"),
		sendTimeout: sendTimeout,
		sleep:       sleep,
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

func (s *autoReplyService) Receive(ctx context.Context, in InboundMessage) (*domain.Message, error) {
	msg, err := domain.NewInbound(in.From, in.To, in.Body, in.MessageSID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store inbound message: %w", err)
	}

	metrics.InboundReceived.Inc()
	s.log.Info("inbound message stored", "id", msg.ID, "from", msg.From, "sid", msg.ProviderMessageID)
	return msg, nil
}

func (s *autoReplyService) ScheduleReply(inbound *domain.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn("shutting down, auto-reply dropped", "inbound_id", inbound.ID)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("auto-reply panic recovered", "inbound_id", inbound.ID, "panic", r)
			}
		}()

		if err := s.reply(s.baseCtx, inbound); err != nil {
			s.log.Error("auto-reply aborted", "inbound_id", inbound.ID, "error", err)
		}
	}()
}

func (s *autoReplyService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// reply runs the delay-then-send sequence for one inbound message.
//
// Flow:
//   - Load the current configuration; disabled or empty message ends here.
//   - Wait for the configured delay.
//   - Send through the gateway and record the outbound message as sent or
//     failed. Failures are not retried.
func (s *autoReplyService) reply(ctx context.Context, inbound *domain.Message) error {
	cfg, err := s.cfgRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.ShouldReply() {
		metrics.AutoReplies.WithLabelValues(metrics.OutcomeSkipped).Inc()
		s.log.Debug("auto-reply disabled, skipping", "inbound_id", inbound.ID)
		return nil
	}

	if d := cfg.ResponseDelay(); d > 0 {
		if err := s.sleep(ctx, d); err != nil {
			return fmt.Errorf("delay interrupted: %w", err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	sid, sendErr := s.client.Send(sendCtx, inbound.From, cfg.AutoReplyMessage)
	cancel()

	out, err := domain.NewOutbound(inbound.To, inbound.From, cfg.AutoReplyMessage, sid, sendErr)
	if err != nil {
		return fmt.Errorf("build outbound message: %w", err)
	}

	// The attempt already happened, so record it even if shutdown began.
	storeCtx := context.WithoutCancel(ctx)
	if err := s.repo.Create(storeCtx, out); err != nil {
		return fmt.Errorf("store outbound message: %w", err)
	}

	if sendErr != nil {
		metrics.AutoReplies.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.log.Warn("auto-reply failed", "inbound_id", inbound.ID, "outbound_id", out.ID, "to", out.To, "error", sendErr)
		return nil
	}

	metrics.AutoReplies.WithLabelValues(metrics.OutcomeSent).Inc()
	s.log.Info("auto-reply sent", "inbound_id", inbound.ID, "outbound_id", out.ID, "sid", sid)

	if s.cache != nil && sid != "" {
		if err := s.cache.Set(storeCtx, cache.SentReplies.Key(sid), out.ID, sentReplyTTL); err != nil {
			s.log.Warn("failed to cache sent reply", "sid", sid, "error", err)
		}
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

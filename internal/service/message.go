package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
)

// MessageService serves the read side of the dashboard and the
// configuration editor.
type MessageService interface {
	List(ctx context.Context, limit int) ([]*domain.Message, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	Stats(ctx context.Context) (domain.Stats, error)
	GetConfig(ctx context.Context) (botconfig.Config, error)
	UpdateConfig(ctx context.Context, p botconfig.Patch) (botconfig.Config, error)
}

type messageService struct {
	repo    domain.Repository
	cfgRepo botconfig.Repository
	now     func() time.Time
}

// NewMessageService creates a message service over the given repositories.
func NewMessageService(repo domain.Repository, cfgRepo botconfig.Repository) MessageService {
	return &messageService{
		repo:    repo,
		cfgRepo: cfgRepo,
		now:     time.Now,
	}
}

func (s *messageService) List(ctx context.Context, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	msgs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (s *messageService) Get(ctx context.Context, id string) (*domain.Message, error) {
	return s.repo.Get(ctx, id)
}

// Stats is recomputed on every call; the counts depend on the current time.
func (s *messageService) Stats(ctx context.Context) (domain.Stats, error) {
	st, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return domain.Stats{}, fmt.Errorf("compute stats: %w", err)
	}
	return st, nil
}

func (s *messageService) GetConfig(ctx context.Context) (botconfig.Config, error) {
	return s.cfgRepo.GetConfig(ctx)
}

func (s *messageService) UpdateConfig(ctx context.Context, p botconfig.Patch) (botconfig.Config, error) {
	if err := p.Validate(); err != nil {
		return botconfig.Config{}, err
	}
	return s.cfgRepo.UpdateConfig(ctx, p)
}

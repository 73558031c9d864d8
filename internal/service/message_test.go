package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *memory.Store, n int, dir domain.Direction, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		var m *domain.Message
		var err error
		if dir == domain.DirectionInbound {
			m, err = domain.NewInbound("whatsapp:+1", "whatsapp:+2", fmt.Sprintf("in %d", i), "")
		} else {
			m, err = domain.NewOutbound("whatsapp:+2", "whatsapp:+1", fmt.Sprintf("out %d", i), "SM", nil)
		}
		require.NoError(t, err)
		m.Timestamp = at
		require.NoError(t, store.Create(context.Background(), m))
	}
}

func TestMessageService_ListDefaultsLimit(t *testing.T) {
	store := memory.NewStore(botconfig.Default())
	seed(t, store, 120, domain.DirectionInbound, time.Now())
	svc := NewMessageService(store, store)

	all, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, domain.DefaultListLimit)

	some, err := svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, some, 5)
}

func TestMessageService_Stats(t *testing.T) {
	store := memory.NewStore(botconfig.Default())
	now := time.Now()
	seed(t, store, 3, domain.DirectionInbound, now.Add(-time.Hour))
	seed(t, store, 2, domain.DirectionOutbound, now.Add(-time.Hour))
	seed(t, store, 4, domain.DirectionInbound, now.Add(-3*24*time.Hour))
	seed(t, store, 1, domain.DirectionOutbound, now.Add(-10*24*time.Hour))

	st, err := NewMessageService(store, store).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Stats{
		TotalReceived24h: 3,
		TotalSent24h:     2,
		TotalReceived7d:  7,
		TotalSent7d:      2,
	}, st)
}

func TestMessageService_StatsEmpty(t *testing.T) {
	store := memory.NewStore(botconfig.Default())

	st, err := NewMessageService(store, store).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, st)
}

func TestMessageService_UpdateConfig(t *testing.T) {
	store := memory.NewStore(botconfig.Default())
	svc := NewMessageService(store, store)

	delay := 5
	cfg, err := svc.UpdateConfig(context.Background(), botconfig.Patch{ResponseDelaySeconds: &delay})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ResponseDelaySeconds)
	assert.True(t, cfg.AutoReplyEnabled)
	assert.Equal(t, botconfig.DefaultAutoReplyMessage, cfg.AutoReplyMessage)

	neg := -1
	_, err = svc.UpdateConfig(context.Background(), botconfig.Patch{ResponseDelaySeconds: &neg})
	assert.ErrorIs(t, err, botconfig.ErrNegativeDelay)

	got, err := svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, got.ResponseDelaySeconds)
}

func TestMessageService_GetNotFound(t *testing.T) {
	store := memory.NewStore(botconfig.Default())

	_, err := NewMessageService(store, store).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

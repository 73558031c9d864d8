package botconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatch_ApplyKeepsUnsetFields(t *testing.T) {
	base := Config{
		ID:                   "cfg",
		AutoReplyEnabled:     true,
		AutoReplyMessage:     "hello",
		ResponseDelaySeconds: 5,
	}

	disabled := false
	got := Patch{AutoReplyEnabled: &disabled}.Apply(base)

	assert.False(t, got.AutoReplyEnabled)
	assert.Equal(t, "hello", got.AutoReplyMessage)
	assert.Equal(t, 5, got.ResponseDelaySeconds)
	assert.Equal(t, "cfg", got.ID)
}

func TestPatch_ApplyAllFields(t *testing.T) {
	enabled := true
	msg := "back soon"
	delay := 12

	got := Patch{
		AutoReplyEnabled:     &enabled,
		AutoReplyMessage:     &msg,
		ResponseDelaySeconds: &delay,
	}.Apply(Config{})

	assert.True(t, got.AutoReplyEnabled)
	assert.Equal(t, "back soon", got.AutoReplyMessage)
	assert.Equal(t, 12, got.ResponseDelaySeconds)
}

func TestPatch_Validate(t *testing.T) {
	neg := -1
	zero := 0
	limit := MaxResponseDelaySeconds
	over := MaxResponseDelaySeconds + 1
	wraps := 9223372037

	assert.ErrorIs(t, Patch{ResponseDelaySeconds: &neg}.Validate(), ErrNegativeDelay)
	assert.NoError(t, Patch{ResponseDelaySeconds: &zero}.Validate())
	assert.NoError(t, Patch{ResponseDelaySeconds: &limit}.Validate())
	assert.ErrorIs(t, Patch{ResponseDelaySeconds: &over}.Validate(), ErrDelayTooLarge)
	assert.ErrorIs(t, Patch{ResponseDelaySeconds: &wraps}.Validate(), ErrDelayTooLarge)
	assert.NoError(t, Patch{}.Validate())
}

func TestConfig_ResponseDelayIsClamped(t *testing.T) {
	assert.Equal(t, time.Duration(0), Config{ResponseDelaySeconds: -3}.ResponseDelay())
	assert.Equal(t, 5*time.Second, Config{ResponseDelaySeconds: 5}.ResponseDelay())

	huge := Config{ResponseDelaySeconds: 9223372037}.ResponseDelay()
	assert.Equal(t, 24*time.Hour, huge)
	assert.Positive(t, huge)
}

func TestConfig_ShouldReply(t *testing.T) {
	assert.True(t, Default().ShouldReply())
	assert.False(t, Config{AutoReplyEnabled: false, AutoReplyMessage: "x"}.ShouldReply())
	assert.False(t, Config{AutoReplyEnabled: true, AutoReplyMessage: ""}.ShouldReply())
}

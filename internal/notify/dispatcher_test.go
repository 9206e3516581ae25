package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
)

type fakeSender struct {
	available bool
	availErr  error
	sendErr   error
	sent      []model.NotificationRequest
}

func (s *fakeSender) Available(context.Context) (bool, error) {
	return s.available, s.availErr
}

func (s *fakeSender) Send(_ context.Context, req model.NotificationRequest) (uint32, error) {
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.sent = append(s.sent, req)
	return uint32(len(s.sent)), nil
}

func testConfig(identifier string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.App.Identifier = identifier
	return cfg
}

func TestDispatcher_Notify(t *testing.T) {
	sender := &fakeSender{available: true}
	d := NewDispatcher(testConfig("app.id"), sender, nil)

	require.NoError(t, d.Notify(context.Background(), "T", "B"))

	require.Len(t, sender.sent, 1)
	req := sender.sent[0]
	assert.Equal(t, "app.id", req.Identifier)
	assert.Equal(t, "T", req.Title)
	assert.Equal(t, "B", req.Body)
	assert.Equal(t, config.DefaultAppName, req.AppName)
	assert.Equal(t, int32(5000), req.TimeoutMs)
}

func TestDispatcher_Unavailable(t *testing.T) {
	sender := &fakeSender{available: false}
	d := NewDispatcher(testConfig("app.id"), sender, nil)

	err := d.Notify(context.Background(), "T", "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.ErrorIs(t, err, platform.ErrNotificationsUnavailable)
	assert.Empty(t, sender.sent)
}

func TestDispatcher_AvailabilityQueryFails(t *testing.T) {
	sender := &fakeSender{availErr: errors.New("bus gone")}
	d := NewDispatcher(testConfig("app.id"), sender, nil)

	err := d.Notify(context.Background(), "T", "B")
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.Empty(t, sender.sent)
}

func TestDispatcher_Rejected(t *testing.T) {
	sender := &fakeSender{available: true, sendErr: errors.New("permission denied")}
	d := NewDispatcher(testConfig("app.id"), sender, nil)

	err := d.Notify(context.Background(), "T", "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDispatcher_NoSender(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	err := d.Notify(context.Background(), "T", "B")
	assert.ErrorIs(t, err, platform.ErrNotificationsUnavailable)
}

func TestDispatcher_UpdateConfig(t *testing.T) {
	sender := &fakeSender{available: true}
	d := NewDispatcher(testConfig("old.id"), sender, nil)

	cfg := testConfig("new.id")
	cfg.Notifications.Timeout = 0
	d.UpdateConfig(cfg)

	require.NoError(t, d.Notify(context.Background(), "T", "B"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "new.id", sender.sent[0].Identifier)
	assert.Equal(t, int32(-1), sender.sent[0].TimeoutMs, "zero timeout uses the server default")
}

func TestDispatcher_Request(t *testing.T) {
	cfg := testConfig("app.id")
	cfg.Notifications.Timeout = config.Duration(1500 * time.Millisecond)
	cfg.Notifications.Icon = "dialog-information"
	d := NewDispatcher(cfg, nil, nil)

	req := d.Request("title", "body")
	assert.Equal(t, int32(1500), req.TimeoutMs)
	assert.Equal(t, "dialog-information", req.Icon)
}

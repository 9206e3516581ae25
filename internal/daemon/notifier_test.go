package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	rec := &recordingNotifier{}
	n := NewInternalNotifier(rec, nil)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }

	assert.True(t, n.Notify("k", "first", ""))
	assert.False(t, n.Notify("k", "second", ""))
	assert.True(t, n.Notify("other", "third", ""))

	clock = clock.Add(6 * time.Second)
	assert.True(t, n.Notify("k", "fourth", ""))

	assert.Equal(t, []string{"first", "third", "fourth"}, rec.titles)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	rec := &recordingNotifier{}
	n := NewInternalNotifier(rec, nil)
	n.SetEnabled(false)

	assert.False(t, n.Notify("k", "title", "body"))
	assert.Equal(t, 0, rec.count())
}

func TestInternalNotifier_NilNotifier(t *testing.T) {
	n := NewInternalNotifier(nil, nil)
	assert.False(t, n.Notify("k", "title", "body"))
}

func TestInternalNotifier_SendFailureIsSwallowed(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("no server")}
	n := NewInternalNotifier(rec, nil)

	assert.True(t, n.Notify("k", "title", "body"))
	assert.Equal(t, 1, rec.count())
}

func TestInternalNotifier_Helpers(t *testing.T) {
	rec := &recordingNotifier{}
	n := NewInternalNotifier(rec, nil)
	n.SetMinInterval(0)

	n.NotifyConfigReloaded()
	n.NotifyConfigError(errors.New("bad mode"))
	n.NotifyNoteError(errors.New("disk full"))

	assert.Equal(t, []string{"Configuration Reloaded", "Configuration Error", "Note Error"}, rec.titles)
}

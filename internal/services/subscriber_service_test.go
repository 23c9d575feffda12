package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/events"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(t events.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == t {
			n++
		}
	}
	return n
}

func boolPtr(b bool) *bool { return &b }

func TestSubscribe_NewAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	publisher := &recordingPublisher{}
	svc := NewSubscriberService(repositories.NewSubscriberRepository(), nil, publisher)

	sub, err := svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "  Reader@Portal.TEST ", Name: "Reader"})
	require.NoError(t, err)
	assert.Equal(t, "reader@portal.test", sub.Email)
	assert.True(t, sub.IsActive)
	assert.NotEmpty(t, sub.UnsubscribeToken)
	assert.Equal(t, 1, publisher.count(events.SubscriberCreated))

	// тот же адрес в другом регистре - все еще дубликат
	_, err = svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "READER@portal.test"})
	appErr := requireCode(t, err, apperrors.CodeAlreadyExists)
	assert.Equal(t, http.StatusConflict, appErr.HTTPCode)
	assert.Equal(t, 1, publisher.count(events.SubscriberCreated))
}

func TestSubscribe_UnsubscribeAndReactivate(t *testing.T) {
	env := newTestEnv(t)
	repo := repositories.NewSubscriberRepository()
	svc := NewSubscriberService(repo, nil, nil)

	sub, err := svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "reader@portal.test", Name: "Reader"})
	require.NoError(t, err)
	oldToken := sub.UnsubscribeToken

	require.NoError(t, svc.Unsubscribe(env.db, oldToken))
	stored, err := repo.FindByEmail(env.db, "reader@portal.test")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.UnsubscribedAt)

	// повторная отписка тем же токеном - не ошибка
	require.NoError(t, svc.Unsubscribe(env.db, oldToken))

	err = svc.Unsubscribe(env.db, "no-such-token")
	requireCode(t, err, apperrors.CodeNotFound)

	again, err := svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "reader@portal.test", Name: "Returning reader"})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID, "reactivation keeps the record")
	assert.True(t, again.IsActive)
	assert.Nil(t, again.UnsubscribedAt)
	assert.Equal(t, "Returning reader", again.Name)
	assert.NotEqual(t, oldToken, again.UnsubscribeToken)

	// старый токен больше не работает
	err = svc.Unsubscribe(env.db, oldToken)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSubscribers_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriberService(repositories.NewSubscriberRepository(), nil, nil)

	a, err := svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "a@portal.test"})
	require.NoError(t, err)
	b, err := svc.Subscribe(env.db, &dto.SubscribeRequest{Email: "b@portal.test"})
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(env.db, b.UnsubscribeToken))

	all, err := svc.ListSubscribers(env.db, &dto.SubscriberListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	active, err := svc.ListSubscribers(env.db, &dto.SubscriberListQuery{Active: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, a.ID, active.Items[0].ID)

	inactive, err := svc.ListSubscribers(env.db, &dto.SubscriberListQuery{Active: boolPtr(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, inactive.Total)

	require.NoError(t, svc.DeleteSubscriber(env.db, a.ID))
	requireCode(t, svc.DeleteSubscriber(env.db, a.ID), apperrors.CodeNotFound)
}

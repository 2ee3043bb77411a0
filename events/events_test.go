package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalBus_DeliversToSubscribers(t *testing.T) {
	bus := NewLocalBus(zaptest.NewLogger(t))

	var mu sync.Mutex
	var got []UserCreated
	handler := func(ctx context.Context, rk string, body []byte) error {
		ev, err := Decode[UserCreated](body)
		if err != nil {
			return err
		}
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		return nil
	}
	bus.Subscribe(RKUserCreated, handler)
	bus.Subscribe(RKUserCreated, handler)
	bus.Subscribe("other.key", func(context.Context, string, []byte) error {
		t.Error("handler for another key must not run")
		return nil
	})

	ev := UserCreated{UserID: "u1", Name: "Ada", Location: "Douala", CreatedAt: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, bus.Publish(context.Background(), RKUserCreated, ev))
	bus.Wait()

	require.Len(t, got, 2)
	assert.Equal(t, ev, got[0])
	assert.Equal(t, ev, got[1])
}

func TestLocalBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewLocalBus(zaptest.NewLogger(t))
	bus.Subscribe(RKUserCreated, func(context.Context, string, []byte) error {
		return errors.New("boom")
	})

	assert.NoError(t, bus.Publish(context.Background(), RKUserCreated, UserCreated{UserID: "u1"}))
	bus.Wait()
}

func TestLocalBus_HandlerOutlivesCancelledContext(t *testing.T) {
	bus := NewLocalBus(zaptest.NewLogger(t))
	var ctxErr error
	bus.Subscribe(RKUserCreated, func(ctx context.Context, _ string, _ []byte) error {
		ctxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, RKUserCreated, UserCreated{UserID: "u1"}))
	cancel()
	bus.Wait()

	assert.NoError(t, ctxErr)
}

func TestLocalBus_UnencodablePayload(t *testing.T) {
	bus := NewLocalBus(nil)
	err := bus.Publish(context.Background(), RKUserCreated, make(chan int))
	assert.Error(t, err)
}

func TestDecode_InvalidBodyIsPermanent(t *testing.T) {
	_, err := Decode[UserCreated]([]byte("{broken"))
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.False(t, IsPermanent(errors.New("transient")))
	assert.Nil(t, Permanent(nil))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), RKUserCreated, UserCreated{}))
}

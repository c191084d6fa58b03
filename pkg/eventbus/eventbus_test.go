package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type noteEvent struct {
	message string
}

func TestPublisher_Publish(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	publisher := NewEventPublisher(log)

	var got []string
	publisher.Subscribe(func(e noteEvent) {
		got = append(got, e.message)
	})
	publisher.Subscribe(func(e int) {
		t.Error("int handler should not receive noteEvent")
	})

	publisher.Publish(noteEvent{message: "first"})
	publisher.Publish(noteEvent{message: "second"})

	require.Equal(t, []string{"first", "second"}, got)
}

func TestPublisher_PanickingHandlerDoesNotPropagate(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	publisher := NewEventPublisher(log)

	publisher.Subscribe(func(e noteEvent) { panic("boom") })

	require.NotPanics(t, func() {
		publisher.Publish(noteEvent{message: "x"})
	})
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(nil)

	calls := 0
	handler := func(e noteEvent) { calls++ }
	publisher.Subscribe(handler)
	require.Equal(t, 1, publisher.SubscribersCount())

	publisher.Publish(noteEvent{})
	publisher.Unsubscribe(handler)
	publisher.Publish(noteEvent{})

	require.Equal(t, 1, calls)
	require.Equal(t, 0, publisher.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	require.True(t, MatchSignature(func(e noteEvent) {}, []any{noteEvent{}}))
	require.False(t, MatchSignature(func(e noteEvent) {}, []any{1}))
	require.False(t, MatchSignature(struct{}{}, []any{noteEvent{}}))
	require.False(t, MatchSignature(func(a, b noteEvent) {}, []any{noteEvent{}}))
}

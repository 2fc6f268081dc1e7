package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBrokerFanout(t *testing.T) {
	b := NewBroker()
	go b.Start()
	defer b.Stop()

	a := b.Subscribe()
	c := b.Subscribe()
	require.Eventually(t, func() bool { return b.SubCount() == 2 }, time.Second, time.Millisecond)

	b.Publish(Notice{Text: "hello"})

	for _, ch := range []chan Message{a, c} {
		select {
		case msg := <-ch:
			n, ok := msg.(Notice)
			require.True(t, ok)
			require.Equal(t, "hello", n.Text)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}

	b.Unsubscribe(a)
	require.Eventually(t, func() bool { return b.SubCount() == 1 }, time.Second, time.Millisecond)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	b := NewBroker()
	go b.Start()
	b.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(Sample{X: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after stop")
	}
}

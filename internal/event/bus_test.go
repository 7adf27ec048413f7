package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishOrder(t *testing.T) {
	b := New()

	var got []string
	b.Subscribe(func(e any) {
		got = append(got, "first:"+e.(string))
	})
	b.Subscribe(func(e any) {
		got = append(got, "second:"+e.(string))
	})

	b.Publish("a")
	b.Publish("b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestBus_Cancel(t *testing.T) {
	b := New()

	count := 0
	cancel := b.Subscribe(func(any) { count++ })

	b.Publish(struct{}{})
	cancel()
	b.Publish(struct{}{})
	cancel() // second cancel is a no-op

	assert.Equal(t, 1, count)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish("nobody home") })
}

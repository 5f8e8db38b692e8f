package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesOnlyCompanySubscribers(t *testing.T) {
	hub := NewHub()

	chA, cleanupA := hub.Subscribe("company-a")
	defer cleanupA()
	chB, cleanupB := hub.Subscribe("company-b")
	defer cleanupB()

	hub.Publish("company-a", "payroll.processed", map[string]string{"month": "2025-01"})

	select {
	case ev := <-chA:
		assert.Equal(t, "company-a", ev.CompanyID)
		assert.Equal(t, "payroll.processed", ev.Event)
	default:
		t.Fatal("expected event for company-a")
	}

	select {
	case ev := <-chB:
		t.Fatalf("unexpected event for company-b: %+v", ev)
	default:
	}
}

func TestHubCleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("company-a")
	_, cleanup2 := hub.Subscribe("company-a")
	require.Equal(t, 2, hub.SubscriberCount("company-a"))

	cleanup()
	assert.Equal(t, 1, hub.SubscriberCount("company-a"))
	_, open := <-ch
	assert.False(t, open)

	cleanup2()
	assert.Equal(t, 0, hub.SubscriberCount("company-a"))
}

func TestHubPublishDoesNotBlockOnFullChannel(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("company-a")
	defer cleanup()

	for i := 0; i < 50; i++ {
		hub.Publish("company-a", "ping", i)
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("company-a")

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("company-a"))

	cleanup()
	hub.Publish("company-a", "ping", nil)
}

package services

import (
	"testing"

	"airdrop-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedPublishReachesSubscriber(t *testing.T) {
	feed := NewFeed[models.Task]()

	var got []models.Task
	cancel := feed.Subscribe("user-1", func(snapshot []models.Task) {
		got = snapshot
	})
	defer cancel()

	feed.Publish("user-1", []models.Task{{ID: "t1"}, {ID: "t2"}})
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
}

func TestFeedIsolatesUsers(t *testing.T) {
	feed := NewFeed[models.Task]()

	calls := 0
	cancel := feed.Subscribe("user-1", func([]models.Task) { calls++ })
	defer cancel()

	feed.Publish("user-2", []models.Task{{ID: "t1"}})
	assert.Zero(t, calls)

	feed.Publish("user-1", nil)
	assert.Equal(t, 1, calls)
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	feed := NewFeed[models.Wallet]()

	calls := 0
	cancel := feed.Subscribe("user-1", func([]models.Wallet) { calls++ })

	feed.Publish("user-1", nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, feed.SubscriberCount("user-1"))

	cancel()
	feed.Publish("user-1", nil)
	assert.Equal(t, 1, calls)
	assert.Zero(t, feed.SubscriberCount("user-1"))

	// Cancelling twice is harmless
	cancel()
}

func TestFeedMultipleSubscribers(t *testing.T) {
	feed := NewFeed[models.Task]()

	a, b := 0, 0
	cancelA := feed.Subscribe("user-1", func([]models.Task) { a++ })
	cancelB := feed.Subscribe("user-1", func([]models.Task) { b++ })
	defer cancelB()

	feed.Publish("user-1", nil)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	cancelA()
	feed.Publish("user-1", nil)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

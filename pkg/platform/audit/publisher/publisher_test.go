package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	id "mindcare/pkg/domain"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/audit/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memory.InMemoryStore
}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := id.UserID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{
		UserID: userID,
		Action: string(audit.EventApplicationSubmitted),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventApplicationSubmitted), events[0].Action)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := id.UserID(uuid.New())
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			UserID: userID,
			Action: string(audit.EventConfidenceScored),
		})
		require.NoError(t, err)
	}

	require.NoError(t, pub.Close())

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_ComplianceBypassesBuffer(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{
		UserID:   userID,
		Action:   string(audit.EventApplicationApproved),
		Decision: "approved",
	})
	require.NoError(t, err)

	// written synchronously, visible without waiting on the worker
	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_ComplianceFailureIsReturned(t *testing.T) {
	pub := NewPublisher(failingStore{memory.NewInMemoryStore()}, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		UserID: id.UserID(uuid.New()),
		Action: string(audit.EventApplicationRejected),
	})
	require.Error(t, err)
}

func TestPublisher_BufferFull_NoPanic(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				Subject: "ref-1",
				Action:  string(audit.EventReferenceAdded),
			})
		}()
	}
	wg.Wait()
	require.NoError(t, pub.Close())

	events, err := store.ListBySubject(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), 10)
}

func TestPublisher_EmitAfterCloseIsSynchronous(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())

	err := pub.Emit(context.Background(), audit.Event{Subject: "ref-2", Action: string(audit.EventReferenceRemoved)})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "ref-2")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisher_Timestamps(t *testing.T) {
	t.Run("sets timestamp when missing", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)

		userID := id.UserID(uuid.New())
		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventApplicationSubmitted)}))
		after := time.Now()

		events, err := pub.List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)

		userID := id.UserID(uuid.New())
		custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventApplicationSubmitted), Timestamp: custom}))

		events, err := pub.List(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

func TestPublisher_RecentOrdering(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	for _, action := range []audit.AuditEvent{audit.EventApplicationSubmitted, audit.EventConfidenceScored, audit.EventApplicationReviewStarted} {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "app-1", Action: string(action)}))
	}

	recent, err := store.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, string(audit.EventApplicationReviewStarted), recent[0].Action)
	assert.Equal(t, string(audit.EventConfidenceScored), recent[1].Action)
}

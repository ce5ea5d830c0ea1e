package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listStore keeps Redis lists in memory. Only the list commands the replay
// loop issues are implemented; anything else panics on the nil Cmdable.
type listStore struct {
	redis.Cmdable
	lists    map[string][]string
	failPush map[string]bool
}

func newListStore() *listStore {
	return &listStore{lists: map[string][]string{}, failPush: map[string]bool{}}
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if b, ok := v.([]byte); ok {
			out = append(out, string(b))
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func (s *listStore) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if s.failPush[key] {
		return redis.NewIntResult(0, errors.New("READONLY You can't write against a read only replica"))
	}
	for _, v := range toStrings(values) {
		s.lists[key] = append([]string{v}, s.lists[key]...)
	}
	return redis.NewIntResult(int64(len(s.lists[key])), nil)
}

func (s *listStore) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	s.lists[key] = append(s.lists[key], toStrings(values)...)
	return redis.NewIntResult(int64(len(s.lists[key])), nil)
}

func (s *listStore) RPop(_ context.Context, key string) *redis.StringCmd {
	l := s.lists[key]
	if len(l) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	v := l[len(l)-1]
	s.lists[key] = l[:len(l)-1]
	return redis.NewStringResult(v, nil)
}

func dlqEntry(t *testing.T, attempts int) string {
	t.Helper()
	b, err := json.Marshal(DLQEntry{
		OriginalQueue: QueueReceipts,
		JobType:       JobReceipt,
		Payload:       json.RawMessage(`{"sale_id":"x"}`),
		Reason:        "smtp down",
		Attempts:      attempts,
	})
	require.NoError(t, err)
	return string(b)
}

func replayConfig(store *listStore) ReplayConfig {
	return ReplayConfig{RDB: store, Queues: []string{QueueReceipts}, MaxAttempts: 3}
}

func TestReplayOnce_RequeuesAndParks(t *testing.T) {
	store := newListStore()
	fresh := dlqEntry(t, 1)
	spent := dlqEntry(t, 3)
	store.lists[DLQPrefix+QueueReceipts] = []string{fresh, "not json", spent}

	requeued, parked := ReplayOnce(context.Background(), replayConfig(store))

	assert.Equal(t, 1, requeued)
	assert.Equal(t, 2, parked)
	assert.Empty(t, store.lists[DLQPrefix+QueueReceipts])
	assert.ElementsMatch(t, []string{spent, "not json"}, store.lists[ParkedPrefix+QueueReceipts])

	require.Len(t, store.lists[QueueReceipts], 1)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(store.lists[QueueReceipts][0]), &job))
	assert.Equal(t, JobReceipt, job.Type)
	assert.Equal(t, 1, job.Attempts)
}

func TestReplayOnce_KeepsEntryWhenParkingFails(t *testing.T) {
	t.Run("max attempts", func(t *testing.T) {
		store := newListStore()
		spent := dlqEntry(t, 3)
		store.lists[DLQPrefix+QueueReceipts] = []string{spent}
		store.failPush[ParkedPrefix+QueueReceipts] = true

		requeued, parked := ReplayOnce(context.Background(), replayConfig(store))

		assert.Zero(t, requeued)
		assert.Zero(t, parked)
		assert.Equal(t, []string{spent}, store.lists[DLQPrefix+QueueReceipts])
		assert.Empty(t, store.lists[ParkedPrefix+QueueReceipts])
	})

	t.Run("corrupt entry", func(t *testing.T) {
		store := newListStore()
		fresh := dlqEntry(t, 1)
		store.lists[DLQPrefix+QueueReceipts] = []string{fresh, "not json"}
		store.failPush[ParkedPrefix+QueueReceipts] = true

		requeued, parked := ReplayOnce(context.Background(), replayConfig(store))

		// The batch stops at the entry it could not park.
		assert.Zero(t, requeued)
		assert.Zero(t, parked)
		assert.Equal(t, []string{fresh, "not json"}, store.lists[DLQPrefix+QueueReceipts])
	})
}

func TestReplayOnce_RestoresWhenRequeueFails(t *testing.T) {
	store := newListStore()
	fresh := dlqEntry(t, 1)
	store.lists[DLQPrefix+QueueReceipts] = []string{fresh}
	store.failPush[QueueReceipts] = true

	requeued, parked := ReplayOnce(context.Background(), replayConfig(store))

	assert.Zero(t, requeued)
	assert.Zero(t, parked)
	assert.Equal(t, []string{fresh}, store.lists[DLQPrefix+QueueReceipts])
}

func TestSleepCtx_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepCtx(ctx, time.Hour)
	assert.Less(t, time.Since(start), time.Second)
}

package bus

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-live-auction/internal/bus"
	"go-live-auction/internal/model"
	"go-live-auction/test/internal/testutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	rdb, cleanup, err := testutil.SetupRedisOnly()
	if err != nil {
		log.Fatalf("Failed to initialize test redis: %v", err)
	}
	testRdb = rdb

	log.Println("Running bus tests...")

	code := m.Run()

	cleanup()
	os.Exit(code)
}

func TestRedisBus_Roundtrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewRedisBus(testRdb)
	col := &collector{}
	go b.Run(ctx, col.deliver)

	// PSubscribe 需要一點時間生效
	time.Sleep(100 * time.Millisecond)

	bidder := uuid.New()
	envelope := model.NewEnvelope(model.MessageTypeBidPlaced, model.BidPlacedPayload{
		BidderID: bidder,
		Amount:   1050,
	})

	err := b.Publish(ctx, "room-rt", envelope)
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(col.snapshot()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	events := col.snapshot()
	assert.Equal(t, "room-rt", events[0].RoomID)
	assert.Equal(t, model.MessageTypeBidPlaced, events[0].Envelope.Type)
	assert.False(t, events[0].Envelope.Timestamp.IsZero())

	// payload 經過 JSON 往返後是 map
	payload, ok := events[0].Envelope.Payload.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, bidder.String(), payload["bidder_id"])
	assert.Equal(t, 1050.0, payload["amount"])
}

func TestRedisBus_ChannelPerRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewRedisBus(testRdb)
	col := &collector{}
	go b.Run(ctx, col.deliver)

	time.Sleep(100 * time.Millisecond)

	assert.NoError(t, b.Publish(ctx, "room-a", model.NewEnvelope(model.MessageTypeAuctionUpdate, nil)))
	assert.NoError(t, b.Publish(ctx, "room-b", model.NewEnvelope(model.MessageTypeNotification, nil)))

	assert.Eventually(t, func() bool {
		return len(col.snapshot()) == 2
	}, 2*time.Second, 20*time.Millisecond)

	rooms := map[string]model.MessageType{}
	for _, ev := range col.snapshot() {
		rooms[ev.RoomID] = ev.Envelope.Type
	}
	assert.Equal(t, model.MessageTypeAuctionUpdate, rooms["room-a"])
	assert.Equal(t, model.MessageTypeNotification, rooms["room-b"])
}

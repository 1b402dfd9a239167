package repository

import (
	"context"
	"testing"
	"time"

	"go-live-auction/internal/model"
	"go-live-auction/internal/repository"
	apperrors "go-live-auction/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestAuctionCreateAndFind(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAuctionRepository(getTestDB())

	reserve := 2000.0
	now := time.Now().UTC()
	auction := &model.Auction{
		AuctionID:    uuid.New(),
		ProductID:    uuid.New(),
		RoomID:       "room-create-test",
		StartPrice:   1000,
		MinIncrement: 50,
		ReservePrice: &reserve,
		StartTime:    now,
		EndTime:      now.Add(time.Hour),
		Status:       model.AuctionStatusScheduled,
	}

	created, err := repo.Create(ctx, auction)
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 0.0, created.CurrentBid, "new auction has no bids")
	assert.Nil(t, created.CurrentBidderID)

	found, err := repo.FindByAuctionID(ctx, auction.AuctionID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "room-create-test", found.RoomID)
	assert.NotNil(t, found.ReservePrice)
	assert.Equal(t, reserve, *found.ReservePrice)
}

func TestAuctionFindByAuctionID_NotFound(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	repo := repository.NewAuctionRepository(getTestDB())

	_, err := repo.FindByAuctionID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAuctionNotFound)
}

func TestAuctionList_StatusFilter(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAuctionRepository(getTestDB())

	now := time.Now().UTC()
	createTestAuction(t, model.AuctionStatusLive, 100, 10, now, now.Add(time.Hour))
	createTestAuction(t, model.AuctionStatusLive, 100, 10, now, now.Add(time.Hour))
	createTestAuction(t, model.AuctionStatusEnded, 100, 10, now.Add(-2*time.Hour), now.Add(-time.Hour))

	all, err := repo.List(ctx, nil, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	live := model.AuctionStatusLive
	filtered, err := repo.List(ctx, &live, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, filtered, 2)

	limited, err := repo.List(ctx, nil, 2, 0)
	assert.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCommitBid_StaleSeenValue(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAuctionRepository(getTestDB())

	now := time.Now().UTC()
	auction := createTestAuction(t, model.AuctionStatusLive, 1000, 50, now, now.Add(time.Hour))

	bidder := uuid.New()

	tx, err := getTestDB().BeginTx(ctx, pgx.TxOptions{})
	assert.NoError(t, err)
	err = repo.CommitBid(ctx, tx, auction.ID, 0, 1000, bidder)
	assert.NoError(t, err)
	assert.NoError(t, tx.Commit(ctx))

	// seen value no longer matches: the conditional update touches no rows
	tx, err = getTestDB().BeginTx(ctx, pgx.TxOptions{})
	assert.NoError(t, err)
	defer tx.Rollback(ctx)
	err = repo.CommitBid(ctx, tx, auction.ID, 0, 1100, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrStaleBid)
}

func TestUpdateStatus_GuardedTransition(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAuctionRepository(getTestDB())

	now := time.Now().UTC()
	auction := createTestAuction(t, model.AuctionStatusScheduled, 1000, 50, now, now.Add(time.Hour))

	updated, err := repo.UpdateStatus(ctx, auction.ID, model.AuctionStatusScheduled, model.AuctionStatusLive)
	assert.NoError(t, err)
	assert.Equal(t, model.AuctionStatusLive, updated.Status)

	// the from-status guard makes the transition idempotent across sweepers
	_, err = repo.UpdateStatus(ctx, auction.ID, model.AuctionStatusScheduled, model.AuctionStatusLive)
	assert.ErrorIs(t, err, apperrors.ErrAuctionNotFound)
}

func TestFindDueForOpenAndClose(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAuctionRepository(getTestDB())

	now := time.Now().UTC()
	dueOpen := createTestAuction(t, model.AuctionStatusScheduled, 100, 10, now.Add(-time.Minute), now.Add(time.Hour))
	dueClose := createTestAuction(t, model.AuctionStatusLive, 100, 10, now.Add(-2*time.Hour), now.Add(-time.Minute))
	createTestAuction(t, model.AuctionStatusScheduled, 100, 10, now.Add(time.Hour), now.Add(2*time.Hour))

	toOpen, err := repo.FindDueForOpen(ctx, now)
	assert.NoError(t, err)
	assert.Len(t, toOpen, 1)
	assert.Equal(t, dueOpen.ID, toOpen[0].ID)

	toClose, err := repo.FindDueForClose(ctx, now)
	assert.NoError(t, err)
	assert.Len(t, toClose, 1)
	assert.Equal(t, dueClose.ID, toClose[0].ID)
}

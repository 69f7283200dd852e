package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/testutil"
)

const testReward = 100

func TestRecordTick(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db, testReward)
	ctx := context.Background()

	website := testutil.CreateWebsite(t, db, "https://example.com", false)
	disabled := testutil.CreateWebsite(t, db, "https://disabled.example.com", true)
	validator := testutil.CreateValidator(t, db, "validator-a", 0)

	testCases := []struct {
		name        string
		websiteID   uint64
		validatorID uint64
		wantErr     error
	}{
		{
			name:        "known website and validator",
			websiteID:   website.ID,
			validatorID: validator.ID,
		},
		{
			name:        "unknown website",
			websiteID:   website.ID + 100,
			validatorID: validator.ID,
			wantErr:     ErrNotFound,
		},
		{
			name:        "disabled website",
			websiteID:   disabled.ID,
			validatorID: validator.ID,
			wantErr:     ErrNotFound,
		},
		{
			name:        "unknown validator",
			websiteID:   website.ID,
			validatorID: validator.ID + 100,
			wantErr:     ErrNotFound,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			before := testutil.PendingAmount(t, db, validator.ID)
			id, err := store.RecordTick(ctx, TickRecord{
				WebsiteID:   c.websiteID,
				ValidatorID: c.validatorID,
				Status:      orm.TickUp,
				LatencyMS:   42,
				ObservedAt:  time.Now(),
			})
			after := testutil.PendingAmount(t, db, validator.ID)

			if c.wantErr != nil {
				assert.True(t, errors.Is(err, c.wantErr), "got %v", err)
				assert.Equal(t, before, after)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, id)
			assert.Equal(t, before+testReward, after)
		})
	}

	count := int64(0)
	require.NoError(t, db.Model(&orm.Tick{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejected ticks must not be persisted")
}

func TestRecordTickConcurrent(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db, testReward)
	ctx := context.Background()

	websites := []*orm.Website{
		testutil.CreateWebsite(t, db, "https://a.example.com", false),
		testutil.CreateWebsite(t, db, "https://b.example.com", false),
	}
	validators := []*orm.Validator{
		testutil.CreateValidator(t, db, "validator-a", 0),
		testutil.CreateValidator(t, db, "validator-b", 0),
	}

	const perPair = 25
	var wg sync.WaitGroup
	errs := make(chan error, perPair*len(websites)*len(validators))
	for _, w := range websites {
		for _, v := range validators {
			for i := 0; i < perPair; i++ {
				wg.Add(1)
				go func(websiteID, validatorID uint64) {
					defer wg.Done()
					_, err := store.RecordTick(ctx, TickRecord{
						WebsiteID:   websiteID,
						ValidatorID: validatorID,
						Status:      orm.TickDown,
						ObservedAt:  time.Now(),
					})
					errs <- err
				}(w.ID, v.ID)
			}
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	for _, v := range validators {
		assert.Equal(t, uint64(perPair*len(websites)*testReward), testutil.PendingAmount(t, db, v.ID))
	}
}

func TestCurrentStatus(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db, testReward)
	ctx := context.Background()

	website := testutil.CreateWebsite(t, db, "https://example.com", false)
	validator := testutil.CreateValidator(t, db, "validator-a", 0)

	status, err := store.CurrentStatus(ctx, website.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, status.Status)

	_, err = store.CurrentStatus(ctx, website.ID+1)
	assert.True(t, errors.Is(err, ErrNotFound))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []TickRecord{
		{Status: orm.TickUp, LatencyMS: 10, ObservedAt: base.Add(2 * time.Minute)},
		// arrives late but observed earlier
		{Status: orm.TickDown, LatencyMS: 20, ObservedAt: base},
		// same timestamp as the first, inserted later
		{Status: orm.TickDown, LatencyMS: 30, ObservedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		r.WebsiteID = website.ID
		r.ValidatorID = validator.ID
		_, err := store.RecordTick(ctx, r)
		require.NoError(t, err)
	}

	status, err = store.CurrentStatus(ctx, website.ID)
	require.NoError(t, err)
	assert.Equal(t, string(orm.TickDown), status.Status)
	assert.Equal(t, uint64(30), status.LatencyMS)
	assert.True(t, base.Add(2*time.Minute).Equal(status.LastSeen))

	ticks, total, err := store.Ticks(ctx, website.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, ticks, 2)
	assert.Equal(t, uint64(30), ticks[0].LatencyMS)
	assert.Equal(t, uint64(10), ticks[1].LatencyMS)
}

func TestEnabledWebsites(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db, testReward)
	ctx := context.Background()

	a, err := store.CreateWebsite(ctx, "https://a.example.com", "owner")
	require.NoError(t, err)
	b, err := store.CreateWebsite(ctx, "https://b.example.com", "owner")
	require.NoError(t, err)
	require.NoError(t, store.DisableWebsite(ctx, a.ID))
	assert.True(t, errors.Is(store.DisableWebsite(ctx, b.ID+10), ErrNotFound))

	websites, total, err := store.EnabledWebsites(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, websites, 1)
	assert.Equal(t, b.ID, websites[0].ID)

	// disabled websites keep their history but accept no new ticks
	v := testutil.CreateValidator(t, db, "validator-a", 0)
	_, err = store.RecordTick(ctx, TickRecord{
		WebsiteID:   a.ID,
		ValidatorID: v.ID,
		Status:      orm.TickUp,
		ObservedAt:  time.Now(),
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

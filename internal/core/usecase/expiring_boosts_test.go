package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func TestScanExpiringBoosts_WindowAndFlag(t *testing.T) {
	owner := uuid.New()
	promotions := &fakePromotionRepo{
		promotions: []domain.Promotion{
			{ID: 1, ListingID: 10, ExpiresAt: scanNow.Add(23 * time.Hour)},
			{ID: 2, ListingID: 10, ExpiresAt: scanNow.Add(25 * time.Hour)},
			{ID: 3, ListingID: 10, ExpiresAt: scanNow.Add(time.Hour), Notified: true},
			{ID: 4, ListingID: 10, ExpiresAt: scanNow.Add(-time.Hour)},
		},
		owners: map[int64]uuid.UUID{10: owner},
	}
	devices := &fakeDeviceRepo{devices: []domain.DeviceRegistration{
		{UserID: owner, Token: "token-a"},
		{UserID: owner, Token: "token-b"},
		{UserID: uuid.New(), Token: "someone-else"},
	}}
	uc := NewScanExpiringBoostsUseCase(promotions, devices)

	reminders, err := uc.Execute(context.Background(), scanNow)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, int64(1), reminders[0].Promotion.ID)
	assert.Equal(t, owner, reminders[0].Promotion.OwnerID)
	assert.Len(t, reminders[0].Devices, 2)

	assert.True(t, promotions.promotions[0].Notified)
	assert.False(t, promotions.promotions[1].Notified)
	assert.False(t, promotions.promotions[3].Notified, "past-due promotions are not swept")

	again, err := uc.Execute(context.Background(), scanNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestScanExpiringBoosts_ConcurrentScansClaimOnce(t *testing.T) {
	owner := uuid.New()
	promotions := &fakePromotionRepo{owners: map[int64]uuid.UUID{}}
	for i := 1; i <= 50; i++ {
		promotions.promotions = append(promotions.promotions, domain.Promotion{
			ID:        int64(i),
			ListingID: int64(i),
			ExpiresAt: scanNow.Add(time.Duration(i) * time.Minute),
		})
		promotions.owners[int64(i)] = owner
	}
	uc := NewScanExpiringBoostsUseCase(promotions, &fakeDeviceRepo{})

	var mu sync.Mutex
	seen := map[int64]int{}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reminders, err := uc.Execute(context.Background(), scanNow)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			for _, r := range reminders {
				seen[r.Promotion.ID]++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	for id, n := range seen {
		assert.Equal(t, 1, n, "promotion %d reported more than once", id)
	}
}

func TestScanExpiringBoosts_DeviceLookupFailureKeepsClaim(t *testing.T) {
	owner := uuid.New()
	promotions := &fakePromotionRepo{
		promotions: []domain.Promotion{{ID: 1, ListingID: 7, ExpiresAt: scanNow.Add(2 * time.Hour)}},
		owners:     map[int64]uuid.UUID{7: owner},
	}
	devices := &fakeDeviceRepo{findErr: map[uuid.UUID]error{owner: errBoom}}

	reminders, err := NewScanExpiringBoostsUseCase(promotions, devices).Execute(context.Background(), scanNow)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].DeviceLookupFailed)
	assert.True(t, promotions.promotions[0].Notified)
}

func TestScanExpiringBoosts_ClaimError(t *testing.T) {
	uc := NewScanExpiringBoostsUseCase(&fakePromotionRepo{claimErr: errBoom}, &fakeDeviceRepo{})
	_, err := uc.Execute(context.Background(), scanNow)
	assert.ErrorIs(t, err, errBoom)
}

func TestCheckExpiringBoosts_EnqueuesPerDevice(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	promotions := &fakePromotionRepo{
		promotions: []domain.Promotion{
			{ID: 1, ListingID: 10, ExpiresAt: scanNow.Add(3 * time.Hour)},
			{ID: 2, ListingID: 20, ExpiresAt: scanNow.Add(4 * time.Hour)},
		},
		owners: map[int64]uuid.UUID{10: owner, 20: other},
	}
	devices := &fakeDeviceRepo{devices: []domain.DeviceRegistration{
		{UserID: owner, Token: "phone"},
		{UserID: owner, Token: "tablet"},
	}}
	devices.findErr = map[uuid.UUID]error{other: errBoom}
	queue := &fakeQueue{failFor: map[string]bool{"tablet": true}}
	notifier := &fakeNotifier{}

	uc := NewCheckExpiringBoostsUseCase(NewScanExpiringBoostsUseCase(promotions, devices), queue, notifier, 2)
	stats, err := uc.Execute(context.Background(), scanNow)
	require.NoError(t, err)

	assert.Equal(t, domain.ReminderRunStats{Claimed: 2, JobsEnqueued: 1, EnqueueFailed: 1, LookupFailures: 1}, stats)
	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, domain.PushKindBoostExpiry, job.Kind)
	assert.Equal(t, "phone", job.Recipient.Token)
	assert.Equal(t, "Boosting Plan Expiry Reminder", job.Message.Title)
	assert.Equal(t, "10", job.Message.Data["post_id"])
	assert.Equal(t, "boosting_expiry_reminder", job.Message.Data["type"])

	assert.Len(t, notifier.events, 2)
}

func TestCheckExpiringBoosts_NothingDue(t *testing.T) {
	queue := &fakeQueue{}
	uc := NewCheckExpiringBoostsUseCase(NewScanExpiringBoostsUseCase(&fakePromotionRepo{}, &fakeDeviceRepo{}), queue, &fakeNotifier{}, 0)

	stats, err := uc.Execute(context.Background(), scanNow)
	require.NoError(t, err)
	assert.Zero(t, stats)
	assert.Empty(t, queue.jobs)
}

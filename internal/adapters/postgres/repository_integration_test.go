//go:build integration

package postgres_adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"findar-backend/internal/core/domain"
	pgclient "findar-backend/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("findar_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, MigrateUp(connStr))

	pool, err := pgclient.NewClient(ctx, pgclient.Config{DatabaseURL: connStr, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, accountType domain.AccountType, credits float64, lastActive time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, account_type, credits, last_active_at) VALUES ($1, $2, $3, $4)`,
		id, string(accountType), credits, lastActive)
	require.NoError(t, err)
	return id
}

func seedListing(t *testing.T, repo *PostgresListingRepository, owner uuid.UUID, title string, price float64, lat, lon *float64) *domain.Listing {
	t.Helper()
	l := &domain.Listing{OwnerID: owner, Title: title, Price: price, Active: true, Latitude: lat, Longitude: lon}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	listings, err := NewPostgresListingRepository(pool)
	require.NoError(t, err)
	promotions, err := NewPostgresPromotionRepository(pool)
	require.NoError(t, err)
	plans, err := NewPostgresBoostingPlanRepository(pool)
	require.NoError(t, err)
	users, err := NewPostgresUserRepository(pool)
	require.NoError(t, err)
	devices, err := NewPostgresDeviceRepository(pool)
	require.NoError(t, err)
	saved, err := NewPostgresSavedListingRepository(pool)
	require.NoError(t, err)

	owner := seedUser(t, pool, domain.AccountTypeAgency, 100, now)
	plan := &domain.BoostingPlan{PlanType: "Basic", TargetAudience: domain.AudienceIndividual, CreditCost: 10, DurationMonths: 1}
	require.NoError(t, plans.Create(ctx, plan))

	t.Run("duplicate plan is rejected", func(t *testing.T) {
		dup := &domain.BoostingPlan{PlanType: "Basic", TargetAudience: domain.AudienceIndividual, CreditCost: 99, DurationMonths: 2}
		assert.ErrorIs(t, plans.Create(ctx, dup), domain.ErrInvalidPlan)

		exists, err := plans.Exists(ctx, "Basic", domain.AudienceIndividual)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("search candidates respect radius prefilter and account type", func(t *testing.T) {
		lat, lon := 36.7538, 3.0588
		nearLat, nearLon := 36.80, 3.12
		farLat, farLon := 35.6971, -0.6308
		near := seedListing(t, listings, owner, "Near flat", 1500, &nearLat, &nearLon)
		far := seedListing(t, listings, owner, "Far flat", 1500, &farLat, &farLon)
		seedListing(t, listings, owner, "No map", 1500, nil, nil)

		agency := domain.ListedByAgency
		found, err := listings.FindSearchCandidates(ctx, domain.SearchCriteria{
			Origin:   &domain.GeoPoint{Latitude: lat, Longitude: lon},
			ListedBy: &agency,
		})
		require.NoError(t, err)

		ids := make([]int64, 0, len(found))
		for _, l := range found {
			ids = append(ids, l.ID)
			assert.Equal(t, domain.AccountTypeAgency, l.OwnerAccountType)
		}
		assert.Contains(t, ids, near.ID)
		assert.NotContains(t, ids, far.ID)
	})

	t.Run("claim expiring is at most once under concurrency", func(t *testing.T) {
		l := seedListing(t, listings, owner, "Boosted", 2000, nil, nil)
		for i := 0; i < 5; i++ {
			require.NoError(t, promotions.Create(ctx, &domain.Promotion{
				PlanID: plan.ID, ListingID: l.ID, CreatedAt: now, ExpiresAt: now.Add(23 * time.Hour),
			}))
		}
		require.NoError(t, promotions.Create(ctx, &domain.Promotion{
			PlanID: plan.ID, ListingID: l.ID, CreatedAt: now, ExpiresAt: now.Add(25 * time.Hour),
		}))

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := promotions.ClaimExpiring(ctx, now, domain.ExpiryWarningWindow)
				assert.NoError(t, err)
				for _, p := range claimed {
					assert.Equal(t, owner, p.OwnerID)
					assert.Equal(t, "Boosted", p.ListingTitle)
				}
				mu.Lock()
				total += len(claimed)
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 5, total)

		again, err := promotions.ClaimExpiring(ctx, now, domain.ExpiryWarningWindow)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("sponsored listings need a running promotion", func(t *testing.T) {
		running := seedListing(t, listings, owner, "Running", 3000, nil, nil)
		require.NoError(t, listings.MarkBoosted(ctx, running.ID))
		require.NoError(t, promotions.Create(ctx, &domain.Promotion{
			PlanID: plan.ID, ListingID: running.ID, CreatedAt: now, ExpiresAt: now.Add(48 * time.Hour),
		}))
		expired := seedListing(t, listings, owner, "Expired", 3000, nil, nil)
		require.NoError(t, listings.MarkBoosted(ctx, expired.ID))
		require.NoError(t, promotions.Create(ctx, &domain.Promotion{
			PlanID: plan.ID, ListingID: expired.ID, CreatedAt: now.Add(-72 * time.Hour), ExpiresAt: now.Add(-time.Hour),
		}))

		found, err := listings.FindSponsored(ctx, now)
		require.NoError(t, err)
		ids := make([]int64, 0, len(found))
		for _, l := range found {
			ids = append(ids, l.ID)
		}
		assert.Contains(t, ids, running.ID)
		assert.NotContains(t, ids, expired.ID)
	})

	t.Run("charge never overdraws", func(t *testing.T) {
		buyer := seedUser(t, pool, domain.AccountTypeNormal, 100, now)

		require.NoError(t, users.Charge(ctx, buyer, 60))
		assert.ErrorIs(t, users.Charge(ctx, buyer, 60), domain.ErrInsufficientCredits)
		require.NoError(t, users.Refund(ctx, buyer, 60))
		require.NoError(t, users.Charge(ctx, buyer, 100))

		assert.ErrorIs(t, users.Charge(ctx, uuid.New(), 1), domain.ErrUserNotFound)
	})

	t.Run("inactive users are reminded once per idle period", func(t *testing.T) {
		idle := seedUser(t, pool, domain.AccountTypeNormal, 0, now.Add(-48*time.Hour))

		first, err := users.ClaimInactive(ctx, now, domain.InactivityThreshold)
		require.NoError(t, err)
		assert.True(t, containsUser(first, idle))

		second, err := users.ClaimInactive(ctx, now.Add(time.Hour), domain.InactivityThreshold)
		require.NoError(t, err)
		assert.False(t, containsUser(second, idle))

		require.NoError(t, users.Touch(ctx, idle, now.Add(2*time.Hour)))
		third, err := users.ClaimInactive(ctx, now.Add(27*time.Hour), domain.InactivityThreshold)
		require.NoError(t, err)
		assert.True(t, containsUser(third, idle))
	})

	t.Run("device token moves to the latest user", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()
		require.NoError(t, devices.Upsert(ctx, &domain.DeviceRegistration{UserID: alice, Token: "tok-shared", CreatedAt: now, LastSeen: now}))
		require.NoError(t, devices.Upsert(ctx, &domain.DeviceRegistration{UserID: bob, Token: "tok-shared", CreatedAt: now, LastSeen: now}))

		aliceDevices, err := devices.FindByUser(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, aliceDevices)
		bobDevices, err := devices.FindByUser(ctx, bob)
		require.NoError(t, err)
		require.Len(t, bobDevices, 1)

		n, err := devices.DeleteByToken(ctx, "tok-shared")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		n, err = devices.DeleteByToken(ctx, "tok-shared")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("saving twice is idempotent", func(t *testing.T) {
		l := seedListing(t, listings, owner, "Saved", 900, nil, nil)
		viewer := uuid.New()

		require.NoError(t, saved.Save(ctx, viewer, l.ID))
		require.NoError(t, saved.Save(ctx, viewer, l.ID))
		assert.ErrorIs(t, saved.Save(ctx, viewer, 987654321), domain.ErrListingNotFound)

		got, err := saved.FindListingsByUser(ctx, viewer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, l.ID, got[0].ID)
	})
}

func containsUser(users []domain.User, id uuid.UUID) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

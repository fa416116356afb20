package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }

type fakeListingRepo struct {
	mu        sync.Mutex
	listings  map[int64]*domain.Listing
	nextID    int64
	boostErr  error
	sponsored []domain.Listing
}

func newFakeListingRepo(listings ...domain.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: map[int64]*domain.Listing{}}
	for i := range listings {
		l := listings[i]
		r.listings[l.ID] = &l
		if l.ID > r.nextID {
			r.nextID = l.ID
		}
	}
	return r
}

func (r *fakeListingRepo) FindByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

// FindSearchCandidates ignores the criteria on purpose: the use case must filter on its own.
func (r *fakeListingRepo) FindSearchCandidates(context.Context, domain.SearchCriteria) ([]domain.Listing, error) {
	return r.all(), nil
}

func (r *fakeListingRepo) FindRecent(_ context.Context, _ domain.RecentQuery, _ int) ([]domain.Listing, error) {
	return r.all(), nil
}

func (r *fakeListingRepo) FindSponsored(context.Context, time.Time) ([]domain.Listing, error) {
	return r.sponsored, nil
}

func (r *fakeListingRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range r.all() {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	l.CreatedAt = time.Now().UTC()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) Update(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[id].Active = active
	return nil
}

func (r *fakeListingRepo) MarkBoosted(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.boostErr != nil {
		return r.boostErr
	}
	r.listings[id].Boosted = true
	return nil
}

func (r *fakeListingRepo) all() []domain.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fakePromotionRepo claims under a mutex, the in-memory analogue of UPDATE ... RETURNING.
type fakePromotionRepo struct {
	mu         sync.Mutex
	promotions []domain.Promotion
	owners     map[int64]uuid.UUID
	createErr  error
	claimErr   error
}

func (r *fakePromotionRepo) Create(_ context.Context, p *domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = int64(len(r.promotions) + 1)
	r.promotions = append(r.promotions, *p)
	return nil
}

func (r *fakePromotionRepo) ClaimExpiring(_ context.Context, now time.Time, window time.Duration) ([]domain.ExpiringPromotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return nil, r.claimErr
	}
	var out []domain.ExpiringPromotion
	for i := range r.promotions {
		p := &r.promotions[i]
		if p.Notified || !p.ExpiresAt.After(now) || p.ExpiresAt.After(now.Add(window)) {
			continue
		}
		p.Notified = true
		out = append(out, domain.ExpiringPromotion{Promotion: *p, OwnerID: r.owners[p.ListingID]})
	}
	return out, nil
}

type fakeDeviceRepo struct {
	mu        sync.Mutex
	devices   []domain.DeviceRegistration
	findErr   map[uuid.UUID]error
	deleteErr error
	deleted   []string
}

func (r *fakeDeviceRepo) Upsert(_ context.Context, d *domain.DeviceRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		if r.devices[i].Token == d.Token {
			r.devices[i].UserID = d.UserID
			r.devices[i].LastSeen = d.LastSeen
			return nil
		}
	}
	r.devices = append(r.devices, *d)
	return nil
}

func (r *fakeDeviceRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]domain.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.findErr[userID]; err != nil {
		return nil, err
	}
	var out []domain.DeviceRegistration
	for _, d := range r.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) DeleteByToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var kept []domain.DeviceRegistration
	var removed int64
	for _, d := range r.devices {
		if d.Token == token {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	r.devices = kept
	r.deleted = append(r.deleted, token)
	return removed, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []domain.PushJob
	failFor map[string]bool
	err     error
}

func (q *fakeQueue) Enqueue(_ context.Context, job domain.PushJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil || q.failFor[job.Recipient.Token] {
		return errBoom
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.UserEvent
}

func (n *fakeNotifier) Notify(_ context.Context, e domain.UserEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

type fakeTransport struct {
	status domain.DeliveryStatus
	err    error
	calls  []domain.Recipient
}

func (t *fakeTransport) Deliver(_ context.Context, r domain.Recipient, _ domain.PushMessage) (domain.DeliveryStatus, error) {
	t.calls = append(t.calls, r)
	return t.status, t.err
}

type fakePlanRepo struct {
	plans     []domain.BoostingPlan
	createErr error
}

func (r *fakePlanRepo) FindAll(context.Context) ([]domain.BoostingPlan, error) { return r.plans, nil }

func (r *fakePlanRepo) FindByID(_ context.Context, id int64) (*domain.BoostingPlan, error) {
	for _, p := range r.plans {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlanNotFound
}

func (r *fakePlanRepo) Exists(_ context.Context, planType string, audience domain.TargetAudience) (bool, error) {
	for _, p := range r.plans {
		if p.PlanType == planType && p.TargetAudience == audience {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlanRepo) Create(_ context.Context, p *domain.BoostingPlan) error {
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = int64(len(r.plans) + 1)
	r.plans = append(r.plans, *p)
	return nil
}

type fakeLedger struct {
	balances map[uuid.UUID]float64
	refunds  []float64
}

func (l *fakeLedger) Charge(_ context.Context, userID uuid.UUID, amount float64) error {
	if l.balances[userID] < amount {
		return domain.ErrInsufficientCredits
	}
	l.balances[userID] -= amount
	return nil
}

func (l *fakeLedger) Refund(_ context.Context, userID uuid.UUID, amount float64) error {
	l.balances[userID] += amount
	l.refunds = append(l.refunds, amount)
	return nil
}

type fakeUserRepo struct {
	inactive []domain.User
	touched  map[uuid.UUID]time.Time
}

func (r *fakeUserRepo) Touch(_ context.Context, userID uuid.UUID, at time.Time) error {
	if r.touched == nil {
		r.touched = map[uuid.UUID]time.Time{}
	}
	r.touched[userID] = at
	return nil
}

func (r *fakeUserRepo) ClaimInactive(context.Context, time.Time, time.Duration) ([]domain.User, error) {
	out := r.inactive
	r.inactive = nil
	return out, nil
}

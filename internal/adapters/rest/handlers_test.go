package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"findar-backend/internal/adapters/notifier"
	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Info(string, port.Fields)                 {}
func (discardLogger) Warn(string, port.Fields)                 {}
func (discardLogger) Error(string, error, port.Fields)         {}
func (discardLogger) Debug(string, port.Fields)                {}
func (d discardLogger) WithFields(port.Fields) port.LoggerPort { return d }

type fakeSearchUC struct {
	got    domain.SearchCriteria
	result []domain.Listing
}

func (f *fakeSearchUC) Execute(_ context.Context, c domain.SearchCriteria) ([]domain.Listing, error) {
	f.got = c
	return f.result, nil
}

type fakeDetailsUC struct{ err error }

func (f *fakeDetailsUC) Execute(_ context.Context, id int64) (*domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Listing{ID: id, Title: "Flat", Price: 1000, Active: true}, nil
}

type fakeCreateUC struct{ owner uuid.UUID }

func (f *fakeCreateUC) Execute(_ context.Context, ownerID uuid.UUID, in domain.ListingInput) (*domain.Listing, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.owner = ownerID
	l := &domain.Listing{ID: 42, OwnerID: ownerID, Active: true, CreatedAt: time.Now()}
	in.Apply(l)
	return l, nil
}

type fakeTrackUC struct{ calls []uuid.UUID }

func (f *fakeTrackUC) Execute(_ context.Context, userID uuid.UUID) error {
	f.calls = append(f.calls, userID)
	return nil
}

type fakeBoostUC struct{ err error }

func (f *fakeBoostUC) Execute(_ context.Context, _ uuid.UUID, listingID, planID int64) (*domain.Promotion, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now()
	return &domain.Promotion{ID: 1, PlanID: planID, ListingID: listingID, CreatedAt: now, ExpiresAt: now.AddDate(0, 1, 0)}, nil
}

type fakeSendUC struct {
	recipient domain.Recipient
	result    domain.DeliveryResult
	err       error
}

func (f *fakeSendUC) Execute(_ context.Context, r domain.Recipient, msg domain.PushMessage) (domain.DeliveryResult, error) {
	f.recipient = r
	if err := r.Validate(); err != nil {
		return "", err
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}
	return f.result, f.err
}

type fakeJobRunner struct{ err error }

func (f *fakeJobRunner) RunNow(context.Context, string) error { return f.err }

type testEnv struct {
	router   http.Handler
	search   *fakeSearchUC
	details  *fakeDetailsUC
	create   *fakeCreateUC
	track    *fakeTrackUC
	boost    *fakeBoostUC
	send     *fakeSendUC
	jobs     *fakeJobRunner
	notifier *notifier.SSENotifier
}

const testServiceToken = "s3cret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		search:   &fakeSearchUC{},
		details:  &fakeDetailsUC{},
		create:   &fakeCreateUC{},
		track:    &fakeTrackUC{},
		boost:    &fakeBoostUC{},
		send:     &fakeSendUC{result: domain.DeliveryDelivered},
		jobs:     &fakeJobRunner{},
		notifier: notifier.NewSSENotifier(discardLogger{}),
	}
	t.Cleanup(env.notifier.Close)

	notifications := NewNotificationHandler(nil, env.send, env.notifier)
	notifications.keepAlive = time.Hour

	env.router = NewRouter(
		ServerConfig{AllowedOrigins: []string{"*"}, ServiceToken: testServiceToken},
		Handlers{
			Listings:      NewListingHandler(env.search, nil, nil, env.details, env.create, nil, nil, nil, nil),
			SavedListings: NewSavedListingHandler(nil, nil, nil),
			Boosting:      NewBoostingHandler(nil, nil, env.boost),
			Notifications: notifications,
			Jobs:          NewJobHandler(env.jobs),
			TrackActivity: env.track,
		},
		discardLogger{},
	)
	return env
}

func (env *testEnv) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestAdvancedSearch_IgnoresMalformedParameters(t *testing.T) {
	env := newTestEnv(t)
	env.search.result = []domain.Listing{{ID: 1, Title: "A", Price: 1500}, {ID: 2, Title: "B", Price: 1900}}

	rec := env.do(http.MethodGet, "/api/v1/listings/search?min_price=abc&max_price=2000&listing_type=rent&sort_by=bogus", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.search.got.MinPrice)
	require.NotNil(t, env.search.got.MaxPrice)
	assert.Equal(t, 2000.0, *env.search.got.MaxPrice)
	require.NotNil(t, env.search.got.ListingType)
	assert.Equal(t, domain.ListingTypeRent, *env.search.got.ListingType)
	assert.Equal(t, domain.DefaultSortKey, env.search.got.SortBy)

	var resp ListingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(1), resp.Data[0].ID)
}

func TestGetListingDetails(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/listings/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/listings/7", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)

	env.details.err = domain.ErrListingNotFound
	rec = env.do(http.MethodGet, "/api/v1/listings/7", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCreateListing_RequiresUserHeader(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title":"Flat","price":1200,"listing_type":"rent","building_type":"Apartment"}`

	rec := env.do(http.MethodPost, "/api/v1/listings", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/listings", body, map[string]string{"X-User-ID": "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.track.calls)

	user := uuid.New()
	rec = env.do(http.MethodPost, "/api/v1/listings", body, map[string]string{"X-User-ID": user.String()})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, user, env.create.owner)
	assert.Equal(t, []uuid.UUID{user}, env.track.calls)

	var resp ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.BuildingType)
	assert.Equal(t, "apartment", *resp.BuildingType)
}

func TestCreateListing_RejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-User-ID": uuid.NewString()}

	rec := env.do(http.MethodPost, "/api/v1/listings", `{"title":"Flat","price":1200,"listing_type":"lease"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/listings", `{"title":"Flat","price":0}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/listings", `{not json`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoostListing_MapsDomainErrors(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-User-ID": uuid.NewString()}

	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{name: "created", body: `{"plan_id":3}`, want: http.StatusCreated},
		{name: "missing plan", body: `{}`, want: http.StatusBadRequest},
		{name: "insufficient credits", err: domain.ErrInsufficientCredits, body: `{"plan_id":3}`, want: http.StatusPaymentRequired},
		{name: "not owner", err: domain.ErrNotListingOwner, body: `{"plan_id":3}`, want: http.StatusForbidden},
		{name: "unknown plan", err: domain.ErrPlanNotFound, body: `{"plan_id":3}`, want: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env.boost.err = tc.err
			rec := env.do(http.MethodPost, "/api/v1/listings/5/boost", tc.body, headers)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestInternalEndpoints_RequireServiceToken(t *testing.T) {
	env := newTestEnv(t)
	body := `{"topic":"agency","title":"Hi","body":"There"}`

	rec := env.do(http.MethodPost, "/api/v1/internal/notifications/send-to-topic", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/internal/notifications/send-to-topic", body,
		map[string]string{"X-Service-Token": testServiceToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TopicRecipient("agency"), env.send.recipient)
	assert.JSONEq(t, `{"result":"delivered"}`, rec.Body.String())
}

func TestSendNotification_StatusMapping(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-Service-Token": testServiceToken}

	env.send.err = domain.ErrTransientDelivery
	rec := env.do(http.MethodPost, "/api/v1/internal/notifications/send", `{"token":"tok","title":"T"}`, headers)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env.send.err = nil
	rec = env.do(http.MethodPost, "/api/v1/internal/notifications/send", `{"token":"","title":"T"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunJob_BusyIsConflict(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-Service-Token": testServiceToken}

	rec := env.do(http.MethodPost, "/api/v1/internal/jobs/boost-expiry/run", "", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.jobs.err = domain.ErrJobBusy
	rec = env.do(http.MethodPost, "/api/v1/internal/jobs/boost-expiry/run", "", headers)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.jobs.err = domain.ErrJobNotFound
	rec = env.do(http.MethodPost, "/api/v1/internal/jobs/nope/run", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type ctxJobRunner struct {
	ctx context.Context
	job string
}

func (f *ctxJobRunner) RunNow(ctx context.Context, job string) error {
	f.ctx, f.job = ctx, job
	return nil
}

func TestRunJob_OutlivesCallerDisconnect(t *testing.T) {
	runner := &ctxJobRunner{}

	ctx, cancel := context.WithCancel(contextkeys.ContextWithTraceID(context.Background(), "trace-1"))
	cancel()
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("job", "boost-expiry")
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/jobs/boost-expiry/run", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	NewJobHandler(runner).RunJob(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "boost-expiry", runner.job)
	require.NotNil(t, runner.ctx)
	assert.NoError(t, runner.ctx.Err())
	assert.Equal(t, "trace-1", contextkeys.TraceIDFromContext(runner.ctx))
}

func TestStream_DeliversLiveEvents(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user := uuid.New()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", user.String())

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	_, _ = reader.ReadString('\n') // data
	_, _ = reader.ReadString('\n') // blank

	env.notifier.Notify(context.Background(), domain.UserEvent{Type: "boosting_expiry_reminder", UserID: user, Data: map[string]int{"post_id": 9}})

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: boosting_expiry_reminder\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: {\"post_id\":9}\n", line)
}

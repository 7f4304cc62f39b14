package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	auditdomain "github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/fraud"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/proximity"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/qrtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== fakes =====

type fakeRecords struct {
	records map[string]*attendance.Record

	getErr    error
	createErr error
	updateErr error

	countResult int
	countErr    error

	updated []attendance.Record
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: make(map[string]*attendance.Record)}
}

func recordKey(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

func (f *fakeRecords) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if f.createErr != nil {
		return attendance.Record{}, f.createErr
	}
	key := recordKey(rec.UserID, rec.Day)
	if _, exists := f.records[key]; exists {
		return attendance.Record{}, &pgconn.PgError{Code: "23505", ConstraintName: "idx_unique_daily_checkin"}
	}
	rec.CreatedAt = rec.CheckInTime
	rec.UpdatedAt = rec.CheckInTime
	stored := rec
	f.records[key] = &stored
	return rec, nil
}

func (f *fakeRecords) GetByUserAndDay(_ context.Context, userID string, day time.Time) (*attendance.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[recordKey(userID, day)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecords) Update(_ context.Context, rec attendance.Record) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, rec)
	stored := rec
	f.records[recordKey(rec.UserID, rec.Day)] = &stored
	return nil
}

func (f *fakeRecords) ListByUser(_ context.Context, userID string, _ attendance.MyAttendanceFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRecords) CountCheckinsAtSite(_ context.Context, _ string, _ time.Time, _ time.Time) (int, error) {
	return f.countResult, f.countErr
}

func (f *fakeRecords) GetStaleOpenRecords(_ context.Context, _ time.Time, _ int) ([]attendance.Record, error) {
	return nil, nil
}

type fakeSites struct {
	sites []site.Site
}

func (f *fakeSites) Create(_ context.Context, s site.Site) (site.Site, error) { return s, nil }
func (f *fakeSites) Update(_ context.Context, _ site.Site) error              { return nil }
func (f *fakeSites) Deactivate(_ context.Context, _ string) error             { return nil }

func (f *fakeSites) GetByID(_ context.Context, id string) (site.Site, error) {
	for _, s := range f.sites {
		if s.ID == id {
			return s, nil
		}
	}
	return site.Site{}, site.ErrSiteNotFound
}

func (f *fakeSites) GetByShortCode(_ context.Context, code string) (site.Site, error) {
	for _, s := range f.sites {
		if s.ShortCode != nil && *s.ShortCode == code {
			return s, nil
		}
	}
	return site.Site{}, site.ErrSiteNotFound
}

func (f *fakeSites) ListActive(_ context.Context) ([]site.Site, error) {
	var out []site.Site
	for _, s := range f.sites {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSites) List(_ context.Context) ([]site.Site, error) {
	return f.sites, nil
}

type fakeLeave struct {
	status *leave.Status
	err    error
}

func (f *fakeLeave) GetByUser(_ context.Context, _ string) (*leave.Status, error) {
	return f.status, f.err
}

func (f *fakeLeave) Upsert(_ context.Context, s leave.Status) (leave.Status, error) {
	return s, nil
}

type fakeSessions struct {
	binding  *device.Session
	byIP     *device.Session
	upserted []device.Session
}

func (f *fakeSessions) GetActiveBinding(_ context.Context, _ string, _ string, _ time.Time) (*device.Session, error) {
	return f.binding, nil
}

func (f *fakeSessions) GetActiveByIP(_ context.Context, _ string, _ string, _ string, _ time.Time) (*device.Session, error) {
	return f.byIP, nil
}

func (f *fakeSessions) Upsert(_ context.Context, s device.Session) (device.Session, error) {
	f.upserted = append(f.upserted, s)
	return s, nil
}

func (f *fakeSessions) ListByUser(_ context.Context, _ string, _ int) ([]device.Session, error) {
	return nil, nil
}

type fakeSink struct {
	entries    []auditdomain.Entry
	violations []device.Violation
}

func (f *fakeSink) Log(e auditdomain.Entry)            { f.entries = append(f.entries, e) }
func (f *fakeSink) Violation(v device.Violation)       { f.violations = append(f.violations, v) }
func (f *fakeSink) hasAction(action string) bool {
	for _, e := range f.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

// ===== harness =====

const testQRSecret = "attendance-service-test-secret"

type testEnv struct {
	svc      *AttendanceServiceImpl
	records  *fakeRecords
	sites    *fakeSites
	leave    *fakeLeave
	sessions *fakeSessions
	sink     *fakeSink
	signer   *qrtoken.Signer
	now      time.Time
}

// 1 degree of latitude is ~111.2 km.
func metersNorth(m float64) float64 {
	return m / 111195.0
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hqCode := "HQ1"
	annexCode := "ANX"
	sites := &fakeSites{sites: []site.Site{
		{
			ID:           "site-hq",
			Name:         "Headquarters",
			Latitude:     0,
			Longitude:    0,
			RadiusMeters: 100,
			ShortCode:    &hqCode,
			IsActive:     true,
		},
		{
			ID:           "site-annex",
			Name:         "Annex",
			Latitude:     metersNorth(150),
			Longitude:    0,
			RadiusMeters: 100,
			ShortCode:    &annexCode,
			IsActive:     true,
		},
	}}

	signer, err := qrtoken.NewSigner(testQRSecret, 5*time.Minute)
	require.NoError(t, err)

	records := newFakeRecords()
	leaveRepo := &fakeLeave{}
	sessions := &fakeSessions{}
	sink := &fakeSink{}

	detector := fraud.NewDetector(sessions, sink, 2*time.Hour)
	resolver := proximity.NewResolver(proximity.DefaultPolicy())

	svc := NewAttendanceService(records, sites, leaveRepo, detector, resolver, signer, sink, time.UTC).(*AttendanceServiceImpl)

	env := &testEnv{
		svc:      svc,
		records:  records,
		sites:    sites,
		leave:    leaveRepo,
		sessions: sessions,
		sink:     sink,
		signer:   signer,
		now:      time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return env.now }
	return env
}

func claimsCtx(t *testing.T, userID string) context.Context {
	t.Helper()
	tok := jwt.New()
	require.NoError(t, tok.Set("user_id", userID))
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func gpsCheckIn(lat, lon float64) attendance.CheckInRequest {
	return attendance.CheckInRequest{
		Latitude:  &lat,
		Longitude: &lon,
		DeviceInfo: &device.Info{
			DeviceID:    "dev-1",
			DeviceName:  "Pixel 9",
			DeviceClass: "mobile",
		},
		IPAddress: "10.0.0.5",
	}
}

// ===== check-in =====

func TestCheckIn_GPSSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.records.countResult = 3
	ctx := claimsCtx(t, "user-1")

	resp, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	assert.Equal(t, "site-hq", *resp.Record.CheckInSiteID)
	assert.Equal(t, string(attendance.MethodGPS), resp.Record.CheckInMethod)
	assert.Equal(t, string(attendance.StatusPresent), resp.Record.Status)
	assert.False(t, resp.Record.GPSUnverified)
	assert.False(t, resp.IsLateArrival)
	require.NotNil(t, resp.CheckInPosition)
	assert.Equal(t, 3, *resp.CheckInPosition)
	assert.Contains(t, resp.Message, "Headquarters")

	// Device binding refreshed and audit entry written.
	require.Len(t, env.sessions.upserted, 1)
	assert.Equal(t, "user-1", env.sessions.upserted[0].UserID)
	assert.True(t, env.sink.hasAction(auditdomain.ActionCheckIn))
}

func TestCheckIn_LateArrival(t *testing.T) {
	env := newTestEnv(t)
	env.now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	ctx := claimsCtx(t, "user-1")

	resp, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)
	assert.True(t, resp.IsLateArrival)
}

func TestCheckIn_SecondAttemptWhileOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	_, err = env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))

	var already *attendance.AlreadyCheckedInError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "08:30", already.CheckInTime)

	// The second attempt itself lands in the violations trail.
	require.NotEmpty(t, env.sink.violations)
	assert.Equal(t, device.ViolationDoubleCheckinAttempt, env.sink.violations[len(env.sink.violations)-1].Type)
}

func TestCheckIn_AfterCompletedDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	env.now = env.now.Add(8 * time.Hour)
	_, err = env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	require.NoError(t, err)

	_, err = env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	var completed *attendance.AlreadyCompletedError
	require.ErrorAs(t, err, &completed)
	assert.InDelta(t, 8.0, completed.WorkHours, 0.01)
}

func TestCheckIn_FailsClosedWhenStoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.records.getErr = errors.New("connection refused")
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.Error(t, err)
	assert.Empty(t, env.records.records)
}

func TestCheckIn_BlockedByLeave(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	env.leave.status = &leave.Status{
		UserID:    "user-1",
		State:     leave.StateOnLeave,
		StartDate: &start,
		EndDate:   &end,
	}
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	var onLeave *leave.OnLeaveError
	require.ErrorAs(t, err, &onLeave)
	assert.Equal(t, "2026-03-01", onLeave.StartDate)
	assert.Equal(t, "2026-03-05", onLeave.EndDate)
	assert.Empty(t, env.records.records)
}

func TestCheckIn_LeaveWindowOutsideTodayDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	env.leave.status = &leave.Status{
		UserID:    "user-1",
		State:     leave.StateSickLeave,
		StartDate: &start,
		EndDate:   &end,
	}
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	assert.NoError(t, err)
}

func TestCheckIn_DeviceConflictBlocks(t *testing.T) {
	env := newTestEnv(t)
	env.sessions.binding = &device.Session{
		DeviceID: "dev-1",
		UserID:   "user-2",
		IsActive: true,
	}
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	assert.ErrorIs(t, err, device.ErrDeviceConflict)
	assert.Empty(t, env.records.records)
}

func TestCheckIn_OutOfRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	// 800m from HQ, mobile check-in radius is 50m.
	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(800), 0))

	var oor *proximity.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "Annex", oor.NearestSite)
	assert.Empty(t, env.records.records)
}

func TestCheckIn_NoLocationEvidence(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	req := attendance.CheckInRequest{
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
		IPAddress:  "10.0.0.5",
	}
	_, err := env.svc.CheckIn(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrLocationUnavailable)
}

func TestCheckIn_TokenWithoutGPSFlagsUnverified(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	tok := env.signer.Issue("site-hq", env.now)
	req := attendance.CheckInRequest{
		Token:      &tok,
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
		IPAddress:  "10.0.0.5",
	}

	resp, err := env.svc.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.MethodQR), resp.Record.CheckInMethod)
	assert.True(t, resp.Record.GPSUnverified)
	assert.Equal(t, "site-hq", *resp.Record.CheckInSiteID)
}

func TestCheckIn_TokenWithGPSInRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	tok := env.signer.Issue("site-hq", env.now)
	req := gpsCheckIn(metersNorth(20), 0)
	req.Token = &tok

	resp, err := env.svc.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.MethodQR), resp.Record.CheckInMethod)
	assert.False(t, resp.Record.GPSUnverified)
}

func TestCheckIn_TokenWithGPSOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	tok := env.signer.Issue("site-hq", env.now)
	req := gpsCheckIn(metersNorth(800), 0)
	req.Token = &tok

	_, err := env.svc.CheckIn(ctx, req)
	var oor *proximity.OutOfRangeError
	require.ErrorAs(t, err, &oor)

	// Scanning a code while physically elsewhere is a recorded violation.
	require.NotEmpty(t, env.sink.violations)
	assert.Equal(t, device.ViolationQROutOfRange, env.sink.violations[len(env.sink.violations)-1].Type)
}

func TestCheckIn_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	tok := env.signer.Issue("site-hq", env.now.Add(-10*time.Minute))
	req := attendance.CheckInRequest{
		Token:      &tok,
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
	}

	_, err := env.svc.CheckIn(ctx, req)
	assert.ErrorIs(t, err, qrtoken.ErrExpiredToken)
}

func TestCheckIn_TamperedToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	tok := env.signer.Issue("site-annex", env.now)
	tok.SiteID = "site-hq"
	req := attendance.CheckInRequest{
		Token:      &tok,
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
	}

	_, err := env.svc.CheckIn(ctx, req)
	assert.ErrorIs(t, err, qrtoken.ErrInvalidToken)
}

func TestCheckIn_ManualCodeNormalized(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	code := " hq1 "
	req := attendance.CheckInRequest{
		SiteCode:   &code,
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
	}

	resp, err := env.svc.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.MethodManualCode), resp.Record.CheckInMethod)
	assert.Equal(t, "site-hq", *resp.Record.CheckInSiteID)
	assert.True(t, resp.Record.GPSUnverified)
}

func TestCheckIn_InactiveSiteViaCode(t *testing.T) {
	env := newTestEnv(t)
	closedCode := "OLD"
	env.sites.sites = append(env.sites.sites, site.Site{
		ID:        "site-old",
		Name:      "Old Office",
		ShortCode: &closedCode,
		IsActive:  false,
	})
	ctx := claimsCtx(t, "user-1")

	req := attendance.CheckInRequest{
		SiteCode:   &closedCode,
		DeviceInfo: &device.Info{DeviceID: "dev-1", DeviceClass: "mobile"},
	}
	_, err := env.svc.CheckIn(ctx, req)
	assert.ErrorIs(t, err, site.ErrSiteInactive)
}

func TestCheckIn_RaceLosesToConcurrentInsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	// Simulate a concurrent insert landing between the existence check
	// and our insert: Create always reports the unique index violation.
	env.records.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "idx_unique_daily_checkin"}

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	var already *attendance.AlreadyCheckedInError
	assert.ErrorAs(t, err, &already)
}

func TestCheckIn_AutoClosesYesterday(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	// Yesterday's record was left open after a 22:00 check-in.
	yesterday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	siteID, siteName := "site-hq", "Headquarters"
	env.records.records[recordKey("user-1", yesterday)] = &attendance.Record{
		ID:              "rec-yesterday",
		UserID:          "user-1",
		Day:             yesterday,
		CheckInTime:     time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC),
		CheckInSiteID:   &siteID,
		CheckInSiteName: &siteName,
		CheckInMethod:   attendance.MethodGPS,
		Status:          attendance.StatusPresent,
	}

	resp, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	require.NotNil(t, resp.MissedCheckoutWarning)
	assert.Equal(t, "2026-03-01", resp.MissedCheckoutWarning.Date)

	closed := env.records.records[recordKey("user-1", yesterday)]
	require.NotNil(t, closed.CheckOutTime)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC), *closed.CheckOutTime)
	assert.Equal(t, attendance.StatusAutoClosed, closed.Status)
	assert.Equal(t, attendance.MethodAutoSystem, *closed.CheckOutMethod)
	assert.True(t, closed.MissedCheckout)
	assert.True(t, closed.AutoCheckout)
	require.NotNil(t, closed.WorkHours)
	assert.InDelta(t, 2.0, *closed.WorkHours, 0.01)

	assert.True(t, env.sink.hasAction(auditdomain.ActionAutoCheckoutMissed))
}

func TestCheckIn_AutoCloseFailureDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	yesterday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	env.records.records[recordKey("user-1", yesterday)] = &attendance.Record{
		ID:          "rec-yesterday",
		UserID:      "user-1",
		Day:         yesterday,
		CheckInTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:      attendance.StatusPresent,
	}
	env.records.updateErr = errors.New("connection refused")

	resp, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)
	assert.Nil(t, resp.MissedCheckoutWarning)
}

func TestCheckIn_MissingClaims(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CheckIn(context.Background(), gpsCheckIn(metersNorth(20), 0))
	assert.Error(t, err)
}

// ===== check-out =====

func TestCheckOut_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	env.now = env.now.Add(9*time.Hour + 17*time.Minute)
	resp, err := env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	require.NoError(t, err)

	require.NotNil(t, resp.Record.WorkHours)
	assert.InDelta(t, 9.28, *resp.Record.WorkHours, 0.001)
	assert.False(t, resp.Record.DifferentCheckoutLocation)
	assert.Equal(t, string(attendance.StatusPresent), resp.Record.Status)
	assert.Contains(t, resp.Message, "9.28 hours")
	assert.True(t, env.sink.hasAction(auditdomain.ActionCheckOut))
}

func TestCheckOut_DifferentSiteFlagged(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	// Check out 10m from the annex; mobile check-out radius is 100m, so
	// the annex wins over HQ 140m away.
	env.now = env.now.Add(8 * time.Hour)
	resp, err := env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(140), 0)))
	require.NoError(t, err)

	assert.Equal(t, "site-annex", *resp.Record.CheckOutSiteID)
	assert.True(t, resp.Record.DifferentCheckoutLocation)
}

func TestCheckOut_MorePermissiveRadius(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	// 80m from HQ rejects a mobile check-in (50m) but passes check-out (100m).
	env.now = env.now.Add(8 * time.Hour)
	_, err = env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(80), 0)))
	assert.NoError(t, err)
}

func TestCheckOut_BeforeCheckInTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	// Today's record claims a 10:00 check-in, but the clock says 08:30:
	// a skewed client or replayed request must not produce negative hours.
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	siteID, siteName := "site-hq", "Headquarters"
	env.records.records[recordKey("user-1", today)] = &attendance.Record{
		ID:              "rec-today",
		UserID:          "user-1",
		Day:             today,
		CheckInTime:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		CheckInSiteID:   &siteID,
		CheckInSiteName: &siteName,
		CheckInMethod:   attendance.MethodGPS,
		Status:          attendance.StatusPresent,
	}

	_, err := env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeOrder)

	// The record stays open and untouched.
	assert.Empty(t, env.records.updated)
	rec := env.records.records[recordKey("user-1", today)]
	assert.Nil(t, rec.CheckOutTime)
	assert.Nil(t, rec.WorkHours)
}

func TestCheckOut_NoOpenSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestCheckOut_AlreadyCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	env.now = env.now.Add(8 * time.Hour)
	_, err = env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	_, err = env.svc.CheckOut(ctx, attendance.CheckOutRequest(gpsCheckIn(metersNorth(20), 0)))
	var completed *attendance.AlreadyCompletedError
	require.ErrorAs(t, err, &completed)
	assert.InDelta(t, 8.0, completed.WorkHours, 0.01)
}

// ===== listing =====

func TestGetMyAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := claimsCtx(t, "user-1")

	_, err := env.svc.CheckIn(ctx, gpsCheckIn(metersNorth(20), 0))
	require.NoError(t, err)

	resp, err := env.svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "user-1", resp.Records[0].UserID)
}

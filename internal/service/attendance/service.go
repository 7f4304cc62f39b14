package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	auditdomain "github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/geo"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/fraud"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/proximity"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/qrtoken"
)

// defaultCheckInStart is the working-hour threshold used for the late
// arrival flag when a site has no configured window.
const defaultCheckInStart = "09:00"

type AttendanceServiceImpl struct {
	attendance.RecordRepository
	site.SiteRepository
	leave.StatusRepository

	detector *fraud.Detector
	resolver *proximity.Resolver
	signer   *qrtoken.Signer
	sink     audit.Sink

	loc *time.Location
	now func() time.Time
}

func NewAttendanceService(
	recordRepo attendance.RecordRepository,
	siteRepo site.SiteRepository,
	leaveRepo leave.StatusRepository,
	detector *fraud.Detector,
	resolver *proximity.Resolver,
	signer *qrtoken.Signer,
	sink audit.Sink,
	loc *time.Location,
) attendance.Service {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		RecordRepository: recordRepo,
		SiteRepository:   siteRepo,
		StatusRepository: leaveRepo,
		detector:         detector,
		resolver:         resolver,
		signer:           signer,
		sink:             sink,
		loc:              loc,
		now:              time.Now,
	}
}

func userIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}
	return userID, nil
}

func assignedSiteFromClaims(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil
	}
	if siteID, ok := claims["site_id"].(string); ok && siteID != "" {
		return &siteID
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CheckIn implements attendance.Service.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	nowUTC := a.now().UTC()
	nowLocal := nowUTC.In(a.loc)
	day := dayOf(nowLocal)

	// The duplicate-entry check fails closed: if the store cannot answer
	// whether today's record exists, nothing is written.
	existing, err := a.RecordRepository.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return attendance.CheckInResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.CheckInResponse{}, a.rejectDuplicate(userID, existing, req.DeviceInfo, req.IPAddress, nowLocal)
	}

	if err := a.checkLeave(ctx, userID, day); err != nil {
		return attendance.CheckInResponse{}, err
	}

	if err := a.detector.Check(ctx, userID, req.DeviceInfo, req.IPAddress, nowUTC); err != nil {
		return attendance.CheckInResponse{}, err
	}

	warning := a.autoCloseYesterday(ctx, userID, day)

	match, method, gpsUnverified, err := a.resolveSite(ctx, resolveInput{
		latitude:  req.Latitude,
		longitude: req.Longitude,
		siteID:    req.SiteID,
		siteCode:  req.SiteCode,
		token:     req.Token,
		info:      req.DeviceInfo,
		userID:    userID,
		op:        proximity.OpCheckIn,
		nowUTC:    nowUTC,
		assigned:  assignedSiteFromClaims(ctx),
	})
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	rec := attendance.Record{
		ID:              uuid.Must(uuid.NewV7()).String(),
		UserID:          userID,
		Day:             day,
		CheckInTime:     nowLocal,
		CheckInSiteID:   &match.Site.ID,
		CheckInSiteName: &match.Site.Name,
		CheckInMethod:   method,
		Status:          attendance.StatusPresent,
		IsRemoteCheckin: match.IsRemote,
		GPSUnverified:   gpsUnverified,
	}
	if req.Latitude != nil && req.Longitude != nil {
		rec.CheckInLatitude = req.Latitude
		rec.CheckInLongitude = req.Longitude
	}

	created, err := a.RecordRepository.Create(ctx, rec)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race against a concurrent check-in from the same
			// account; report it exactly like a sequential duplicate.
			current, getErr := a.RecordRepository.GetByUserAndDay(ctx, userID, day)
			if getErr == nil && current != nil {
				return attendance.CheckInResponse{}, a.rejectDuplicate(userID, current, req.DeviceInfo, req.IPAddress, nowLocal)
			}
			return attendance.CheckInResponse{}, &attendance.AlreadyCheckedInError{CheckInTime: nowLocal.Format("15:04")}
		}
		return attendance.CheckInResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	a.detector.Bind(ctx, userID, req.DeviceInfo, req.IPAddress, nowUTC)

	var position *int
	if n, err := a.RecordRepository.CountCheckinsAtSite(ctx, match.Site.ID, day, nowLocal); err != nil {
		slog.Error("Failed to count check-ins at site", "site_id", match.Site.ID, "error", err)
	} else {
		position = &n
	}

	isLate := isLateArrival(nowLocal, match.Site.CheckInStartTime)

	a.sink.Log(auditdomain.Entry{
		UserID:    userID,
		Action:    auditdomain.ActionCheckIn,
		TableName: "attendance_records",
		RecordID:  created.ID,
		NewValues: map[string]interface{}{
			"site_id":           match.Site.ID,
			"site_name":         match.Site.Name,
			"method":            string(method),
			"distance_meters":   math.Round(match.Distance),
			"is_remote_checkin": match.IsRemote,
			"gps_unverified":    gpsUnverified,
			"is_late_arrival":   isLate,
		},
		IPAddress: optionalString(req.IPAddress),
		UserAgent: optionalString(req.UserAgent),
	})

	return attendance.CheckInResponse{
		Record:                a.toResponse(created),
		Message:               checkInMessage(match, isLate),
		CheckInPosition:       position,
		IsLateArrival:         isLate,
		MissedCheckoutWarning: warning,
	}, nil
}

// CheckOut implements attendance.Service.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	nowUTC := a.now().UTC()
	nowLocal := nowUTC.In(a.loc)
	day := dayOf(nowLocal)

	rec, err := a.RecordRepository.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return attendance.CheckOutResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if rec == nil {
		return attendance.CheckOutResponse{}, attendance.ErrNoOpenSession
	}
	if !rec.Open() {
		return attendance.CheckOutResponse{}, &attendance.AlreadyCompletedError{
			CheckInTime:  rec.CheckInTime.Format("15:04"),
			CheckOutTime: rec.CheckOutTime.Format("15:04"),
			WorkHours:    derefFloat(rec.WorkHours),
		}
	}

	if nowLocal.Before(rec.CheckInTime) {
		return attendance.CheckOutResponse{}, attendance.ErrInvalidTimeOrder
	}

	match, method, gpsUnverified, err := a.resolveSite(ctx, resolveInput{
		latitude:  req.Latitude,
		longitude: req.Longitude,
		siteID:    req.SiteID,
		siteCode:  req.SiteCode,
		token:     req.Token,
		info:      req.DeviceInfo,
		userID:    userID,
		op:        proximity.OpCheckOut,
		nowUTC:    nowUTC,
		assigned:  assignedSiteFromClaims(ctx),
	})
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	workHours := round2(nowLocal.Sub(rec.CheckInTime).Hours())

	rec.CheckOutTime = &nowLocal
	rec.CheckOutSiteID = &match.Site.ID
	rec.CheckOutSiteName = &match.Site.Name
	rec.CheckOutMethod = &method
	rec.WorkHours = &workHours
	if req.Latitude != nil && req.Longitude != nil {
		rec.CheckOutLatitude = req.Latitude
		rec.CheckOutLongitude = req.Longitude
	}
	if gpsUnverified {
		// Never cleared by a later verified step; once unverified, flagged.
		rec.GPSUnverified = true
	}
	rec.DifferentCheckoutLocation = rec.CheckInSiteID != nil && *rec.CheckInSiteID != match.Site.ID

	if err := a.RecordRepository.Update(ctx, *rec); err != nil {
		return attendance.CheckOutResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	a.detector.Bind(ctx, userID, req.DeviceInfo, req.IPAddress, nowUTC)

	a.sink.Log(auditdomain.Entry{
		UserID:    userID,
		Action:    auditdomain.ActionCheckOut,
		TableName: "attendance_records",
		RecordID:  rec.ID,
		NewValues: map[string]interface{}{
			"site_id":                     match.Site.ID,
			"site_name":                   match.Site.Name,
			"method":                      string(method),
			"work_hours":                  workHours,
			"different_checkout_location": rec.DifferentCheckoutLocation,
		},
		IPAddress: optionalString(req.IPAddress),
		UserAgent: optionalString(req.UserAgent),
	})

	return attendance.CheckOutResponse{
		Record:  a.toResponse(*rec),
		Message: fmt.Sprintf("Checked out successfully at %s. You worked %.2f hours today.", match.Site.Name, workHours),
	}, nil
}

// GetMyAttendance implements attendance.Service.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := a.RecordRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, a.toResponse(rec))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    responses,
	}, nil
}

// rejectDuplicate turns an existing record for today into the right
// rejection, recording the attempt in the violations trail.
func (a *AttendanceServiceImpl) rejectDuplicate(userID string, rec *attendance.Record, info *device.Info, ip string, nowLocal time.Time) error {
	if rec.Open() {
		a.detector.RecordDoubleCheckin(userID, info, ip, rec.CheckInTime)
		return &attendance.AlreadyCheckedInError{CheckInTime: rec.CheckInTime.Format("15:04")}
	}
	return &attendance.AlreadyCompletedError{
		CheckInTime:  rec.CheckInTime.Format("15:04"),
		CheckOutTime: rec.CheckOutTime.Format("15:04"),
		WorkHours:    derefFloat(rec.WorkHours),
	}
}

// checkLeave blocks the check-in when the user's leave status covers the
// day. A missing row means active.
func (a *AttendanceServiceImpl) checkLeave(ctx context.Context, userID string, day time.Time) error {
	status, err := a.StatusRepository.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load leave status: %w", err)
	}
	if status == nil || !status.CoversDay(day) {
		return nil
	}

	onLeave := &leave.OnLeaveError{State: status.State}
	if status.StartDate != nil && status.EndDate != nil {
		onLeave.StartDate = status.StartDate.Format("2006-01-02")
		onLeave.EndDate = status.EndDate.Format("2006-01-02")
	}
	return onLeave
}

// autoCloseYesterday closes yesterday's open record at 23:59:59 local
// time, if one exists. Best effort: a failure here never blocks today's
// check-in, it only drops the warning.
func (a *AttendanceServiceImpl) autoCloseYesterday(ctx context.Context, userID string, today time.Time) *attendance.MissedCheckoutWarning {
	yesterday := today.AddDate(0, 0, -1)

	rec, err := a.RecordRepository.GetByUserAndDay(ctx, userID, yesterday)
	if err != nil {
		slog.Error("Failed to look up yesterday's record for auto-closure",
			"user_id", userID, "error", err)
		return nil
	}
	if rec == nil || !rec.Open() {
		return nil
	}

	closed := a.autoClose(ctx, *rec)
	if closed == nil {
		return nil
	}

	return &attendance.MissedCheckoutWarning{
		Date: yesterday.Format("2006-01-02"),
		Message: fmt.Sprintf("You forgot to check out on %s. The day was closed automatically at 23:59:59 with %.2f recorded hours.",
			yesterday.Format("2006-01-02"), derefFloat(closed.WorkHours)),
	}
}

// autoClose applies the auto-closure mutation to an open record and
// returns the closed record, or nil when the write failed.
func (a *AttendanceServiceImpl) autoClose(ctx context.Context, rec attendance.Record) *attendance.Record {
	endOfDay := time.Date(rec.Day.Year(), rec.Day.Month(), rec.Day.Day(), 23, 59, 59, 0, a.loc)
	workHours := round2(endOfDay.Sub(rec.CheckInTime).Hours())
	if workHours < 0 {
		workHours = 0
	}
	method := attendance.MethodAutoSystem

	rec.CheckOutTime = &endOfDay
	rec.CheckOutMethod = &method
	rec.WorkHours = &workHours
	rec.Status = attendance.StatusAutoClosed
	rec.MissedCheckout = true
	rec.AutoCheckout = true
	// Auto-closure reuses the check-in site; no location is known at
	// closure time.
	rec.CheckOutSiteID = rec.CheckInSiteID
	rec.CheckOutSiteName = rec.CheckInSiteName

	if err := a.RecordRepository.Update(ctx, rec); err != nil {
		slog.Error("Failed to auto-close stale record",
			"record_id", rec.ID, "user_id", rec.UserID, "error", err)
		return nil
	}

	a.sink.Log(auditdomain.Entry{
		UserID:    rec.UserID,
		Action:    auditdomain.ActionAutoCheckoutMissed,
		TableName: "attendance_records",
		RecordID:  rec.ID,
		NewValues: map[string]interface{}{
			"check_out_time": endOfDay.Format(time.RFC3339),
			"work_hours":     workHours,
			"status":         string(attendance.StatusAutoClosed),
		},
	})

	return &rec
}

type resolveInput struct {
	latitude  *float64
	longitude *float64
	siteID    *string
	siteCode  *string
	token     *site.LocationToken
	info      *device.Info
	userID    string
	op        proximity.Operation
	nowUTC    time.Time
	assigned  *string
}

func (in resolveInput) deviceClass() device.Class {
	if in.info == nil {
		return device.ParseClass("")
	}
	return device.ParseClass(in.info.DeviceClass)
}

func (in resolveInput) deviceID() string {
	if in.info == nil {
		return ""
	}
	return in.info.DeviceID
}

// resolveSite turns the submitted location evidence into a site match.
// Priority: signed token, then manual code, then raw GPS. The token and
// code paths still verify GPS when coordinates were submitted; without
// them the record is flagged unverified instead of rejected.
func (a *AttendanceServiceImpl) resolveSite(ctx context.Context, in resolveInput) (proximity.Match, attendance.Method, bool, error) {
	var coords *geo.Point
	if in.latitude != nil && in.longitude != nil {
		coords = &geo.Point{Latitude: *in.latitude, Longitude: *in.longitude}
		if !coords.Valid() {
			return proximity.Match{}, "", false, geo.ErrInvalidCoordinate
		}
	}

	switch {
	case in.token != nil:
		match, unverified, err := a.resolveByToken(ctx, in, coords)
		return match, attendance.MethodQR, unverified, err

	case in.siteCode != nil:
		match, unverified, err := a.resolveByCode(ctx, in, coords)
		return match, attendance.MethodManualCode, unverified, err

	case coords != nil:
		sites, err := a.SiteRepository.ListActive(ctx)
		if err != nil {
			return proximity.Match{}, "", false, fmt.Errorf("failed to list active sites: %w", err)
		}
		assigned := in.assigned
		if in.siteID != nil {
			assigned = in.siteID
		}
		match, err := a.resolver.Resolve(coords, in.deviceClass(), in.op, sites, assigned)
		if err != nil {
			return proximity.Match{}, "", false, err
		}
		return match, attendance.MethodGPS, false, nil

	default:
		return proximity.Match{}, "", false, attendance.ErrLocationUnavailable
	}
}

func (a *AttendanceServiceImpl) resolveByToken(ctx context.Context, in resolveInput, coords *geo.Point) (proximity.Match, bool, error) {
	if err := a.signer.Validate(*in.token, in.nowUTC); err != nil {
		return proximity.Match{}, false, err
	}

	s, err := a.loadSite(ctx, in.token.SiteID)
	if err != nil {
		return proximity.Match{}, false, err
	}

	return a.verifySiteDistance(s, coords, in, device.ViolationQROutOfRange)
}

func (a *AttendanceServiceImpl) resolveByCode(ctx context.Context, in resolveInput, coords *geo.Point) (proximity.Match, bool, error) {
	s, err := a.SiteRepository.GetByShortCode(ctx, strings.ToUpper(strings.TrimSpace(*in.siteCode)))
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return proximity.Match{}, false, site.ErrSiteNotFound
		}
		return proximity.Match{}, false, fmt.Errorf("failed to load site by code: %w", err)
	}
	if !s.IsActive {
		return proximity.Match{}, false, site.ErrSiteInactive
	}

	return a.verifySiteDistance(s, coords, in, "")
}

// verifySiteDistance runs the secondary GPS check against a directly
// identified site. No coordinates means the check is skipped and the
// record flagged unverified.
func (a *AttendanceServiceImpl) verifySiteDistance(s site.Site, coords *geo.Point, in resolveInput, violation device.ViolationType) (proximity.Match, bool, error) {
	isRemote := in.assigned != nil && s.ID != *in.assigned

	if coords == nil {
		return proximity.Match{Site: s, IsRemote: isRemote}, true, nil
	}

	d, err := a.resolver.CheckDistance(*coords, s, in.deviceClass(), in.op)
	if err != nil {
		var oor *proximity.OutOfRangeError
		if violation != "" && errors.As(err, &oor) && in.deviceID() != "" {
			a.sink.Violation(device.Violation{
				DeviceID:        in.deviceID(),
				AttemptedUserID: in.userID,
				Type:            violation,
				Context: map[string]interface{}{
					"site_id":         s.ID,
					"site_name":       s.Name,
					"distance_meters": oor.Distance,
					"allowed_radius":  oor.AllowedRadius,
				},
			})
		}
		return proximity.Match{}, false, err
	}

	return proximity.Match{Site: s, Distance: d, IsRemote: isRemote}, false, nil
}

func (a *AttendanceServiceImpl) loadSite(ctx context.Context, id string) (site.Site, error) {
	s, err := a.SiteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to load site: %w", err)
	}
	if !s.IsActive {
		return site.Site{}, site.ErrSiteInactive
	}
	return s, nil
}

func (a *AttendanceServiceImpl) toResponse(rec attendance.Record) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:     rec.ID,
		UserID: rec.UserID,
		Day:    rec.Day.Format("2006-01-02"),

		CheckInTime:      rec.CheckInTime.Format(time.RFC3339),
		CheckInSiteID:    rec.CheckInSiteID,
		CheckInSiteName:  rec.CheckInSiteName,
		CheckInLatitude:  rec.CheckInLatitude,
		CheckInLongitude: rec.CheckInLongitude,
		CheckInMethod:    string(rec.CheckInMethod),

		CheckOutSiteID:    rec.CheckOutSiteID,
		CheckOutSiteName:  rec.CheckOutSiteName,
		CheckOutLatitude:  rec.CheckOutLatitude,
		CheckOutLongitude: rec.CheckOutLongitude,

		WorkHours: rec.WorkHours,
		Status:    string(rec.Status),

		IsRemoteCheckin:           rec.IsRemoteCheckin,
		DifferentCheckoutLocation: rec.DifferentCheckoutLocation,
		MissedCheckout:            rec.MissedCheckout,
		AutoCheckout:              rec.AutoCheckout,
		GPSUnverified:             rec.GPSUnverified,

		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}

	if rec.CheckOutTime != nil {
		t := rec.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &t
	}
	if rec.CheckOutMethod != nil {
		m := string(*rec.CheckOutMethod)
		resp.CheckOutMethod = &m
	}

	return resp
}

// dayOf truncates a local time to its calendar day at midnight.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isLateArrival compares the local clock time against the site's
// check-in window start, defaulting to 09:00.
func isLateArrival(nowLocal time.Time, startTime *string) bool {
	start := defaultCheckInStart
	if startTime != nil && *startTime != "" {
		start = *startTime
	}
	parsed, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	threshold := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, nowLocal.Location())
	return nowLocal.After(threshold)
}

func checkInMessage(match proximity.Match, isLate bool) string {
	msg := fmt.Sprintf("Checked in successfully at %s", match.Site.Name)
	if match.IsRemote {
		msg += " (remote site)"
	}
	if isLate {
		msg += ". You arrived after the check-in window opened."
	}
	return msg
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}


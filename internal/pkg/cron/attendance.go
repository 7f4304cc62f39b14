package cron

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	auditdomain "github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
)

// AttendanceJobs sweeps open records from past days that the per-user
// closure during check-in never reached, e.g. users who simply stopped
// showing up.
type AttendanceJobs struct {
	recordRepo attendance.RecordRepository
	sink       audit.Sink
	loc        *time.Location
	interval   time.Duration
	batchSize  int
}

func NewAttendanceJobs(
	recordRepo attendance.RecordRepository,
	sink audit.Sink,
	loc *time.Location,
	interval time.Duration,
	batchSize int,
) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &AttendanceJobs{
		recordRepo: recordRepo,
		sink:       sink,
		loc:        loc,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_records", j.interval, j.AutoCloseStaleRecords)
}

// AutoCloseStaleRecords closes every open record from a day before
// today at that day's 23:59:59 local time.
func (j *AttendanceJobs) AutoCloseStaleRecords(ctx context.Context) error {
	now := time.Now().In(j.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)

	stale, err := j.recordRepo.GetStaleOpenRecords(ctx, today, j.batchSize)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	closed := 0
	for _, rec := range stale {
		endOfDay := time.Date(rec.Day.Year(), rec.Day.Month(), rec.Day.Day(), 23, 59, 59, 0, j.loc)
		workHours := math.Round(endOfDay.Sub(rec.CheckInTime).Hours()*100) / 100
		if workHours < 0 {
			workHours = 0
		}
		method := attendance.MethodAutoSystem

		rec.CheckOutTime = &endOfDay
		rec.CheckOutMethod = &method
		rec.CheckOutSiteID = rec.CheckInSiteID
		rec.CheckOutSiteName = rec.CheckInSiteName
		rec.WorkHours = &workHours
		rec.Status = attendance.StatusAutoClosed
		rec.MissedCheckout = true
		rec.AutoCheckout = true

		if err := j.recordRepo.Update(ctx, rec); err != nil {
			slog.Error("Cron: failed to auto-close stale record",
				"record_id", rec.ID, "user_id", rec.UserID, "error", err)
			continue
		}

		j.sink.Log(auditdomain.Entry{
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
		closed++
	}

	slog.Info("Cron: auto-close sweep finished", "found", len(stale), "closed", closed)

	j.sink.Log(auditdomain.Entry{
		UserID:    "system",
		Action:    auditdomain.ActionAutoCloseStaleSweep,
		TableName: "attendance_records",
		RecordID:  "sweep",
		NewValues: map[string]interface{}{
			"found":  len(stale),
			"closed": closed,
		},
	})

	return nil
}

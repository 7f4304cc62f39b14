package audit

import "time"

// Entry is one append-only audit-log row.
type Entry struct {
	ID        string
	UserID    string
	Action    string
	TableName string
	RecordID  string
	OldValues map[string]interface{}
	NewValues map[string]interface{}
	IPAddress *string
	UserAgent *string
	CreatedAt time.Time
}

// Actions written by this service.
const (
	ActionCheckIn             = "check_in"
	ActionCheckOut            = "check_out"
	ActionAutoCheckoutMissed  = "auto_checkout_missed"
	ActionUpdateLeaveStatus   = "update_leave_status"
	ActionCreateSite          = "create_site"
	ActionUpdateSite          = "update_site"
	ActionDeactivateSite      = "deactivate_site"
	ActionIssueLocationToken  = "issue_location_token"
	ActionAutoCloseStaleSweep = "auto_close_stale_sweep"
)

package postgresql

import (
	"context"
	"fmt"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type auditLogRepository struct {
	db *database.DB
}

// Create implements audit.Repository. Rows are append-only.
func (r *auditLogRepository) Create(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (
			id, user_id, action, table_name, record_id,
			old_values, new_values, ip_address, user_agent, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := q.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.TableName, entry.RecordID,
		entry.OldValues, entry.NewValues, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func NewAuditLogRepository(db *database.DB) audit.Repository {
	return &auditLogRepository{db: db}
}

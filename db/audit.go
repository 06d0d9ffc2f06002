package db

import (
	"context"
	"time"

	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/jmoiron/sqlx"

	sq "github.com/Masterminds/squirrel"
)

type auditor struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// addToAuditLog adds a audit log entry
func (d *auditor) addToAuditLog(ctx context.Context, event string, payload tables.MapStructure) error {
	insert := d.sb.
		Insert("audit_logs").
		Columns("event_type", "event", "created_at").
		Values(event, payload, time.Now().UTC())
	q, a, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, q, a...)
	return err
}

// AuditLog lists the newest audit log entries
func (d *DataStore) AuditLog(ctx context.Context, limit uint64) ([]*tables.AuditLogTable, error) {
	entities := make([]*tables.AuditLogTable, 0)
	q := d.sb.Select("id", "event_type", "event", "created_at").
		From("audit_logs").
		OrderBy("id DESC").
		Limit(limit)
	if err := d.selectStatement(ctx, &entities, q, nil); err != nil {
		return nil, err
	}
	return entities, nil
}

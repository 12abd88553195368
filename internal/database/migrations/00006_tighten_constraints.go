package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upTightenConstraints, downTightenConstraints)
}

// The attendee_count defaults only existed to backfill rows, and responder_id
// could not be NOT NULL until it was backfilled. SQLite cannot alter column
// constraints in place, so it keeps the backfill defaults.
var tightenStatements = []string{
	`ALTER TABLE invitations ALTER COLUMN attendee_count DROP DEFAULT`,
	`ALTER TABLE invitation_responses ALTER COLUMN attendee_count DROP DEFAULT`,
	`ALTER TABLE invitation_responses ALTER COLUMN responder_id SET NOT NULL`,
}

var loosenStatements = []string{
	`ALTER TABLE invitation_responses ALTER COLUMN responder_id DROP NOT NULL`,
	`ALTER TABLE invitation_responses ALTER COLUMN attendee_count SET DEFAULT 1`,
	`ALTER TABLE invitations ALTER COLUMN attendee_count SET DEFAULT 0`,
}

func upTightenConstraints(ctx context.Context, tx *sql.Tx) error {
	return execPostgres(ctx, tx, tightenStatements)
}

func downTightenConstraints(ctx context.Context, tx *sql.Tx) error {
	return execPostgres(ctx, tx, loosenStatements)
}

func execPostgres(ctx context.Context, tx *sql.Tx, statements []string) error {
	if Dialect != "postgres" {
		return nil
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlexTLDR/invitations/internal/rsvp"
)

// SubmitResponse records the RSVP of a published invitation. Each invitation
// keeps a single response: a new submission overwrites the previous one no
// matter which browser sent it. The invitation's cached rsvp_status and
// attendee_count are updated in the same transaction.
//
// status and attendeeCount must already be normalized by rsvp.Submission.
func (db *DB) SubmitResponse(ctx context.Context, slug, responderID string, status rsvp.Status, attendeeCount int) (*Response, error) {
	resp := &Response{
		ID:            uuid.NewString(),
		ResponderID:   responderID,
		Response:      status,
		AttendeeCount: attendeeCount,
		CreatedAt:     time.Now().UTC(),
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM invitations WHERE slug = $1 AND status = $2`,
			slug, StatusPublished,
		).Scan(&resp.InvitationID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get invitation: %w", err)
		}

		// The unique index on invitation_id turns a second submission into an
		// overwrite of the stored row.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO invitation_responses (id, invitation_id, responder_id, response, attendee_count, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (invitation_id) DO UPDATE
			 SET responder_id = excluded.responder_id,
			     response = excluded.response,
			     attendee_count = excluded.attendee_count`,
			resp.ID, resp.InvitationID, resp.ResponderID, resp.Response, resp.AttendeeCount, resp.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}

		// An overwritten row keeps its original id and created_at
		err = tx.QueryRowContext(ctx,
			`SELECT id, created_at FROM invitation_responses WHERE invitation_id = $1`,
			resp.InvitationID,
		).Scan(&resp.ID, &resp.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to read saved response: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE invitations SET rsvp_status = $1, attendee_count = $2 WHERE id = $3`,
			resp.Response, resp.AttendeeCount, resp.InvitationID,
		)
		if err != nil {
			return fmt.Errorf("failed to update invitation rsvp: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GetInvitationResponses returns the stored responses of an invitation, newest first
func (db *DB) GetInvitationResponses(ctx context.Context, invitationID string) ([]*Response, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, invitation_id, COALESCE(responder_id, ''), response, attendee_count, created_at
		 FROM invitation_responses
		 WHERE invitation_id = $1
		 ORDER BY created_at DESC, id DESC`,
		invitationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	defer rows.Close()

	responses := []*Response{}
	for rows.Next() {
		r := &Response{}
		if err := rows.Scan(&r.ID, &r.InvitationID, &r.ResponderID, &r.Response, &r.AttendeeCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}

	return responses, nil
}

// CountResponses counts responses across all invitations
func (db *DB) CountResponses(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitation_responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}

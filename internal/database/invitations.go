package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlexTLDR/invitations/internal/rsvp"
	"github.com/AlexTLDR/invitations/internal/utils"
)

// InvitationInput carries the editable fields of an invitation. An empty
// Status means draft on create and "unchanged" on update.
type InvitationInput struct {
	Title               string
	CompanyName         string
	RecipientSalutation *string
	RecipientName       string
	RecipientTitle      string
	Content             string
	EventTime           time.Time
	EventLocation       string
	GoogleMapURL        *string
	Schedule            Schedule
	Status              InvitationStatus
}

const invitationColumns = `i.id, i.title, i.company_name, i.recipient_salutation, i.recipient_name,
	i.recipient_title, i.content, i.event_time, i.event_location, i.google_map_url, i.schedule,
	i.slug, i.status, i.rsvp_status, i.attendee_count, i.created_at`

func invitationDest(inv *Invitation, salutation, mapURL, slug *sql.NullString) []any {
	return []any{&inv.ID, &inv.Title, &inv.CompanyName, salutation, &inv.RecipientName,
		&inv.RecipientTitle, &inv.Content, &inv.EventTime, &inv.EventLocation, mapURL, &inv.Schedule,
		slug, &inv.Status, &inv.RSVPStatus, &inv.AttendeeCount, &inv.CreatedAt}
}

func scanInvitation(row scanner) (*Invitation, error) {
	inv := &Invitation{}
	var salutation, mapURL, slug sql.NullString
	if err := row.Scan(invitationDest(inv, &salutation, &mapURL, &slug)...); err != nil {
		return nil, err
	}
	inv.RecipientSalutation = stringPtr(salutation)
	inv.GoogleMapURL = stringPtr(mapURL)
	inv.Slug = stringPtr(slug)
	return inv, nil
}

func slugExists(ctx context.Context, tx *sql.Tx) utils.SlugExistsFunc {
	return func(slug string) (bool, error) {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM invitations WHERE slug = $1)`, slug,
		).Scan(&exists)
		return exists, err
	}
}

func newInvitation(in InvitationInput, createdAt time.Time) *Invitation {
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	return &Invitation{
		ID:                  uuid.NewString(),
		Title:               in.Title,
		CompanyName:         in.CompanyName,
		RecipientSalutation: in.RecipientSalutation,
		RecipientName:       in.RecipientName,
		RecipientTitle:      in.RecipientTitle,
		Content:             in.Content,
		EventTime:           in.EventTime.UTC(),
		EventLocation:       in.EventLocation,
		GoogleMapURL:        in.GoogleMapURL,
		Schedule:            in.Schedule,
		Status:              status,
		RSVPStatus:          rsvp.Pending,
		CreatedAt:           createdAt,
	}
}

// assignSlug gives a published invitation without a slug its first free one
func assignSlug(inv *Invitation, slugs *utils.SlugAllocator) error {
	if inv.Status != StatusPublished || inv.Slug != nil {
		return nil
	}
	slug, err := slugs.Allocate(utils.InvitationSlugBase(inv.Title, inv.RecipientName))
	if err != nil {
		return err
	}
	inv.Slug = &slug
	return nil
}

func insertInvitation(ctx context.Context, tx *sql.Tx, inv *Invitation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO invitations (id, title, company_name, recipient_salutation, recipient_name,
			recipient_title, content, event_time, event_location, google_map_url, schedule,
			slug, status, rsvp_status, attendee_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		inv.ID, inv.Title, inv.CompanyName, nullString(inv.RecipientSalutation), inv.RecipientName,
		inv.RecipientTitle, inv.Content, inv.EventTime, inv.EventLocation, nullString(inv.GoogleMapURL), inv.Schedule,
		nullString(inv.Slug), inv.Status, inv.RSVPStatus, inv.AttendeeCount, inv.CreatedAt,
	)
	if isUniqueViolation(err) {
		// a concurrent publish took the slug between the lookup and the insert
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// CreateInvitation stores a single invitation, assigning a slug when it is published
func (db *DB) CreateInvitation(ctx context.Context, in InvitationInput) (*Invitation, error) {
	invs, err := db.CreateInvitations(ctx, []InvitationInput{in})
	if err != nil {
		return nil, err
	}
	return invs[0], nil
}

// CreateInvitations stores a batch in one transaction. Slugs are unique across
// the stored invitations and the batch itself; any failure rolls back the batch.
func (db *DB) CreateInvitations(ctx context.Context, ins []InvitationInput) ([]*Invitation, error) {
	created := make([]*Invitation, 0, len(ins))
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		slugs := utils.NewSlugAllocator(slugExists(ctx, tx))
		now := time.Now().UTC()
		for idx, in := range ins {
			// distinct timestamps keep the newest-first listing stable within a batch
			inv := newInvitation(in, now.Add(time.Duration(idx)*time.Microsecond))
			if err := assignSlug(inv, slugs); err != nil {
				return err
			}
			if err := insertInvitation(ctx, tx, inv); err != nil {
				return err
			}
			created = append(created, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateInvitation replaces the editable fields. An existing slug is kept even
// when the invitation goes back to draft; publishing assigns one if missing.
func (db *DB) UpdateInvitation(ctx context.Context, id string, in InvitationInput) (*Invitation, error) {
	var updated *Invitation
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		inv, err := scanInvitation(tx.QueryRowContext(ctx,
			`SELECT `+invitationColumns+` FROM invitations i WHERE i.id = $1`, id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get invitation: %w", err)
		}

		inv.Title = in.Title
		inv.CompanyName = in.CompanyName
		inv.RecipientSalutation = in.RecipientSalutation
		inv.RecipientName = in.RecipientName
		inv.RecipientTitle = in.RecipientTitle
		inv.Content = in.Content
		inv.EventTime = in.EventTime.UTC()
		inv.EventLocation = in.EventLocation
		inv.GoogleMapURL = in.GoogleMapURL
		inv.Schedule = in.Schedule
		if in.Status != "" {
			inv.Status = in.Status
		}

		if err := assignSlug(inv, utils.NewSlugAllocator(slugExists(ctx, tx))); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE invitations
			 SET title = $1, company_name = $2, recipient_salutation = $3, recipient_name = $4,
			     recipient_title = $5, content = $6, event_time = $7, event_location = $8,
			     google_map_url = $9, schedule = $10, slug = $11, status = $12
			 WHERE id = $13`,
			inv.Title, inv.CompanyName, nullString(inv.RecipientSalutation), inv.RecipientName,
			inv.RecipientTitle, inv.Content, inv.EventTime, inv.EventLocation,
			nullString(inv.GoogleMapURL), inv.Schedule, nullString(inv.Slug), inv.Status, inv.ID,
		)
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		if err != nil {
			return fmt.Errorf("failed to update invitation: %w", err)
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetInvitationByID retrieves an invitation by ID regardless of status
func (db *DB) GetInvitationByID(ctx context.Context, id string) (*Invitation, error) {
	inv, err := scanInvitation(db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations i WHERE i.id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetPublishedInvitationBySlug retrieves a published invitation. Drafts are
// reported as not found so their existence does not leak.
func (db *DB) GetPublishedInvitationBySlug(ctx context.Context, slug string) (*Invitation, error) {
	inv, err := scanInvitation(db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations i WHERE i.slug = $1 AND i.status = $2`,
		slug, StatusPublished,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// ListInvitationSummaries returns every invitation with its response counts,
// newest first. Invitations without responses report zero counts.
func (db *DB) ListInvitationSummaries(ctx context.Context) ([]*InvitationSummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+invitationColumns+`,
			COUNT(r.id),
			COALESCE(SUM(CASE WHEN r.response = 'ATTENDING' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN r.response = 'ATTENDING' THEN r.attendee_count ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN r.response = 'DECLINED' THEN 1 ELSE 0 END), 0)
		 FROM invitations i
		 LEFT JOIN invitation_responses r ON r.invitation_id = i.id
		 GROUP BY i.id
		 ORDER BY i.created_at DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	defer rows.Close()

	summaries := []*InvitationSummary{}
	for rows.Next() {
		s := &InvitationSummary{}
		var salutation, mapURL, slug sql.NullString
		dest := append(invitationDest(&s.Invitation, &salutation, &mapURL, &slug),
			&s.Responses, &s.Attending, &s.AttendingPeople, &s.Declined)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		s.RecipientSalutation = stringPtr(salutation)
		s.GoogleMapURL = stringPtr(mapURL)
		s.Slug = stringPtr(slug)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return summaries, nil
}

// DeleteInvitation removes an invitation together with its responses
func (db *DB) DeleteInvitation(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		// Delete responses explicitly, SQLite only cascades with foreign_keys enabled
		if _, err := tx.ExecContext(ctx, `DELETE FROM invitation_responses WHERE invitation_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete responses: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete invitation: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

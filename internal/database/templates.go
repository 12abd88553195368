package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TemplateInput carries the fields of a new template.
type TemplateInput struct {
	Name          string
	CompanyName   string
	Title         string
	Content       string
	EventTime     *time.Time
	EventLocation *string
	GoogleMapURL  *string
	Schedule      Schedule
}

// TemplatePatch is a partial template update. Nil fields are left unchanged;
// the Clear flags reset the optional event fields to NULL.
type TemplatePatch struct {
	Name          *string
	CompanyName   *string
	Title         *string
	Content       *string
	EventTime     *time.Time
	EventLocation *string
	GoogleMapURL  *string
	Schedule      *Schedule

	ClearEventTime     bool
	ClearEventLocation bool
	ClearGoogleMapURL  bool
}

const templateColumns = `id, name, company_name, title, content, event_time, event_location,
	google_map_url, schedule, created_at, updated_at`

func scanTemplate(row scanner) (*Template, error) {
	t := &Template{}
	var eventTime sql.NullTime
	var location, mapURL sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.CompanyName, &t.Title, &t.Content, &eventTime, &location,
		&mapURL, &t.Schedule, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.EventTime = timePtr(eventTime)
	t.EventLocation = stringPtr(location)
	t.GoogleMapURL = stringPtr(mapURL)
	return t, nil
}

// ListTemplates returns every template, most recently updated first
func (db *DB) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM invitation_templates ORDER BY updated_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	defer rows.Close()

	templates := []*Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

// GetTemplate retrieves a template by ID
func (db *DB) GetTemplate(ctx context.Context, id string) (*Template, error) {
	t, err := scanTemplate(db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM invitation_templates WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func templateNameTaken(ctx context.Context, tx *sql.Tx, name, excludeID string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM invitation_templates WHERE name = $1 AND id <> $2)`,
		name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check template name: %w", err)
	}
	return exists, nil
}

// CreateTemplate stores a new template. Names are unique.
func (db *DB) CreateTemplate(ctx context.Context, in TemplateInput) (*Template, error) {
	now := time.Now().UTC()
	t := &Template{
		ID:            uuid.NewString(),
		Name:          in.Name,
		CompanyName:   in.CompanyName,
		Title:         in.Title,
		Content:       in.Content,
		EventTime:     in.EventTime,
		EventLocation: in.EventLocation,
		GoogleMapURL:  in.GoogleMapURL,
		Schedule:      in.Schedule,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := templateNameTaken(ctx, tx, t.Name, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrTemplateNameTaken
		}
		return insertTemplate(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func insertTemplate(ctx context.Context, tx *sql.Tx, t *Template) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO invitation_templates (`+templateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Name, t.CompanyName, t.Title, t.Content, t.EventTime, nullString(t.EventLocation),
		nullString(t.GoogleMapURL), t.Schedule, t.CreatedAt, t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrTemplateNameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// UpdateTemplate applies a partial update and bumps updated_at
func (db *DB) UpdateTemplate(ctx context.Context, id string, patch TemplatePatch) (*Template, error) {
	var updated *Template
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		t, err := scanTemplate(tx.QueryRowContext(ctx,
			`SELECT `+templateColumns+` FROM invitation_templates WHERE id = $1`, id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get template: %w", err)
		}

		if patch.Name != nil && *patch.Name != t.Name {
			taken, err := templateNameTaken(ctx, tx, *patch.Name, t.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrTemplateNameTaken
			}
			t.Name = *patch.Name
		}
		if patch.CompanyName != nil {
			t.CompanyName = *patch.CompanyName
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Content != nil {
			t.Content = *patch.Content
		}
		if patch.EventTime != nil || patch.ClearEventTime {
			t.EventTime = patch.EventTime
		}
		if patch.EventLocation != nil || patch.ClearEventLocation {
			t.EventLocation = patch.EventLocation
		}
		if patch.GoogleMapURL != nil || patch.ClearGoogleMapURL {
			t.GoogleMapURL = patch.GoogleMapURL
		}
		if patch.Schedule != nil {
			t.Schedule = *patch.Schedule
		}
		t.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`UPDATE invitation_templates
			 SET name = $1, company_name = $2, title = $3, content = $4, event_time = $5,
			     event_location = $6, google_map_url = $7, schedule = $8, updated_at = $9
			 WHERE id = $10`,
			t.Name, t.CompanyName, t.Title, t.Content, t.EventTime,
			nullString(t.EventLocation), nullString(t.GoogleMapURL), t.Schedule, t.UpdatedAt, t.ID,
		)
		if isUniqueViolation(err) {
			return ErrTemplateNameTaken
		}
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTemplate removes a template. Invitations created from it are unaffected.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM invitation_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

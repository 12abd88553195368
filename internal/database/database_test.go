package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/invitations/internal/rsvp"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(t.TempDir(), "test.db"))
	db, err := New(context.Background(), "sqlite3", dsn, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background(), zerolog.Nop()))
	return db
}

func invitationInput(title, recipient string, status InvitationStatus) InvitationInput {
	return InvitationInput{
		Title:          title,
		CompanyName:    "GTE",
		RecipientName:  recipient,
		RecipientTitle: "Director",
		Content:        "Join us",
		EventTime:      time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC),
		EventLocation:  "Hanoi",
		Schedule:       Schedule{{Time: "18:00", Label: "Welcome"}},
		Status:         status,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background(), zerolog.Nop()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	created, err := db.CreateUser(ctx, "admin", "hash", true)
	require.NoError(t, err)

	got, err := db.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "hash", got.HashedPassword)

	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetUserPassword(ctx, "admin", "other"))
	got, err = db.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "other", got.HashedPassword)

	assert.ErrorIs(t, db.SetUserPassword(ctx, "nobody", "x"), ErrNotFound)
}

func TestCreateInvitationSlugs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	draft, err := db.CreateInvitation(ctx, invitationInput("Year End", "Ngô Văn A", StatusDraft))
	require.NoError(t, err)
	assert.Nil(t, draft.Slug)
	assert.Equal(t, rsvp.Pending, draft.RSVPStatus)

	first, err := db.CreateInvitation(ctx, invitationInput("Year End", "Ngô Văn A", StatusPublished))
	require.NoError(t, err)
	require.NotNil(t, first.Slug)
	assert.Equal(t, "year-end-ngo-van-a", *first.Slug)

	second, err := db.CreateInvitation(ctx, invitationInput("Year End", "Ngô Văn A", StatusPublished))
	require.NoError(t, err)
	require.NotNil(t, second.Slug)
	assert.Equal(t, "year-end-ngo-van-a-2", *second.Slug)
}

func TestCreateInvitationsBatchSlugs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)

	created, err := db.CreateInvitations(ctx, []InvitationInput{
		invitationInput("Gala", "Alice", StatusPublished),
		invitationInput("Gala", "Alice", StatusPublished),
		invitationInput("Gala", "Bob", StatusDraft),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	assert.Equal(t, "gala-alice-2", *created[0].Slug)
	assert.Equal(t, "gala-alice-3", *created[1].Slug)
	assert.Nil(t, created[2].Slug)
}

func TestUpdateInvitationPublishAssignsSlug(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	draft, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusDraft))
	require.NoError(t, err)

	in := invitationInput("Gala", "Alice", StatusPublished)
	in.EventLocation = "Saigon"
	published, err := db.UpdateInvitation(ctx, draft.ID, in)
	require.NoError(t, err)
	require.NotNil(t, published.Slug)
	assert.Equal(t, "gala-alice", *published.Slug)
	assert.Equal(t, "Saigon", published.EventLocation)

	// going back to draft keeps the slug but hides the invitation
	back, err := db.UpdateInvitation(ctx, draft.ID, invitationInput("Gala", "Alice", StatusDraft))
	require.NoError(t, err)
	assert.Equal(t, "gala-alice", *back.Slug)

	_, err = db.GetPublishedInvitationBySlug(ctx, "gala-alice")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.UpdateInvitation(ctx, "missing", in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateInvitationEmptyStatusKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	inv, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)

	updated, err := db.UpdateInvitation(ctx, inv.ID, invitationInput("Gala", "Alice", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, updated.Status)

	_, err = db.GetPublishedInvitationBySlug(ctx, *inv.Slug)
	assert.NoError(t, err)

	draft, err := db.CreateInvitation(ctx, invitationInput("Gala", "Bob", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, draft.Status)
	assert.Nil(t, draft.Slug)
}

func TestGetPublishedInvitationBySlug(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	inv, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)

	got, err := db.GetPublishedInvitationBySlug(ctx, *inv.Slug)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, Schedule{{Time: "18:00", Label: "Welcome"}}, got.Schedule)
	assert.True(t, inv.EventTime.Equal(got.EventTime))

	_, err = db.GetPublishedInvitationBySlug(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitResponseLastWriteWins(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	inv, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)

	_, err = db.SubmitResponse(ctx, *inv.Slug, "browser-1", rsvp.Attending, 3)
	require.NoError(t, err)

	got, err := db.GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, rsvp.Attending, got.RSVPStatus)
	assert.Equal(t, 3, got.AttendeeCount)

	_, err = db.SubmitResponse(ctx, *inv.Slug, "browser-2", rsvp.Declined, 0)
	require.NoError(t, err)

	got, err = db.GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, rsvp.Declined, got.RSVPStatus)
	assert.Equal(t, 0, got.AttendeeCount)

	responses, err := db.GetInvitationResponses(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, rsvp.Declined, responses[0].Response)
	assert.Equal(t, "browser-2", responses[0].ResponderID)
}

func TestSubmitResponseRequiresPublished(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	inv, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)
	_, err = db.UpdateInvitation(ctx, inv.ID, invitationInput("Gala", "Alice", StatusDraft))
	require.NoError(t, err)

	_, err = db.SubmitResponse(ctx, *inv.Slug, "browser-1", rsvp.Attending, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.SubmitResponse(ctx, "unknown", "browser-1", rsvp.Attending, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvitationSummaries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	older, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)
	newer, err := db.CreateInvitation(ctx, invitationInput("Gala", "Bob", StatusPublished))
	require.NoError(t, err)
	_, err = db.CreateInvitation(ctx, invitationInput("Gala", "Carol", StatusDraft))
	require.NoError(t, err)

	_, err = db.SubmitResponse(ctx, *older.Slug, "b1", rsvp.Attending, 4)
	require.NoError(t, err)
	_, err = db.SubmitResponse(ctx, *newer.Slug, "b2", rsvp.Declined, 0)
	require.NoError(t, err)

	summaries, err := db.ListInvitationSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "Carol", summaries[0].RecipientName)
	assert.Zero(t, summaries[0].Responses)
	assert.Zero(t, summaries[0].Attending)
	assert.Zero(t, summaries[0].Declined)

	assert.Equal(t, newer.ID, summaries[1].ID)
	assert.Equal(t, 1, summaries[1].Responses)
	assert.Equal(t, 1, summaries[1].Declined)
	assert.Zero(t, summaries[1].Attending)

	assert.Equal(t, older.ID, summaries[2].ID)
	assert.Equal(t, 1, summaries[2].Attending)
	assert.Equal(t, 4, summaries[2].AttendingPeople)
	assert.Equal(t, rsvp.Attending, summaries[2].RSVPStatus)
}

func TestDeleteInvitationCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	inv, err := db.CreateInvitation(ctx, invitationInput("Gala", "Alice", StatusPublished))
	require.NoError(t, err)
	_, err = db.SubmitResponse(ctx, *inv.Slug, "b1", rsvp.Attending, 2)
	require.NoError(t, err)

	require.NoError(t, db.DeleteInvitation(ctx, inv.ID))

	n, err := db.CountResponses(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = db.GetInvitationByID(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteInvitation(ctx, inv.ID), ErrNotFound)
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	location := "Hanoi"
	first, err := db.CreateTemplate(ctx, TemplateInput{
		Name: "Year End", CompanyName: "GTE", Title: "Gala", Content: "Hello",
		EventLocation: &location,
	})
	require.NoError(t, err)
	assert.False(t, first.ReadyForImport())

	_, err = db.CreateTemplate(ctx, TemplateInput{Name: "Year End", CompanyName: "GTE", Title: "x", Content: "x"})
	assert.ErrorIs(t, err, ErrTemplateNameTaken)

	second, err := db.CreateTemplate(ctx, TemplateInput{Name: "Spring", CompanyName: "GTE", Title: "x", Content: "x"})
	require.NoError(t, err)

	eventTime := time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)
	updated, err := db.UpdateTemplate(ctx, first.ID, TemplatePatch{EventTime: &eventTime})
	require.NoError(t, err)
	assert.True(t, updated.ReadyForImport())
	assert.Equal(t, "Year End", updated.Name)

	list, err := db.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	taken := "Spring"
	_, err = db.UpdateTemplate(ctx, first.ID, TemplatePatch{Name: &taken})
	assert.ErrorIs(t, err, ErrTemplateNameTaken)

	cleared, err := db.UpdateTemplate(ctx, first.ID, TemplatePatch{ClearEventTime: true, ClearEventLocation: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.EventTime)
	assert.Nil(t, cleared.EventLocation)
	assert.False(t, cleared.ReadyForImport())

	_, err = db.UpdateTemplate(ctx, "missing", TemplatePatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.DeleteTemplate(ctx, second.ID))
	assert.ErrorIs(t, db.DeleteTemplate(ctx, second.ID), ErrNotFound)

	_, err = db.GetTemplate(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-checklist/internal/service"
)

func TestSeedPairIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.SeedPair(ctx))
	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.users.Update(ctx, f.jen.ID, " Jeni ", "")
	require.NoError(t, err)
	assert.Equal(t, "Jeni", updated.Name)
	assert.Equal(t, "💕", updated.AvatarEmoji)

	_, err = f.users.Update(ctx, f.jen.ID, "", "🌸")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.users.Update(ctx, 99, "Ghost", "👻")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestLinkTelegramMovesChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.LinkTelegram(ctx, "jenifer", 1001)
	require.NoError(t, err)
	_, err = f.users.LinkTelegram(ctx, "Argenis", 1001)
	require.NoError(t, err)

	owner, err := f.users.ByChat(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, f.arg.ID, owner.ID)

	jen, err := f.users.Get(ctx, f.jen.ID)
	require.NoError(t, err)
	assert.Nil(t, jen.TelegramChatID)

	_, err = f.users.LinkTelegram(ctx, "nobody", 1002)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestPartner(t *testing.T) {
	f := newFixture(t)

	partner, err := f.users.Partner(context.Background(), f.jen.ID)
	require.NoError(t, err)
	assert.Equal(t, f.arg.ID, partner.ID)
}

func TestProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, service.ProjectInput{Name: " "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	project, err := f.projects.Create(ctx, service.ProjectInput{Name: "Move in"})
	require.NoError(t, err)
	assert.NotEmpty(t, project.Emoji)
	assert.NotEmpty(t, project.Color)

	_, err = f.tasks.Create(ctx, service.TaskInput{Title: "boxes", AssignedTo: f.jen.ID, AssignedBy: f.arg.ID, ProjectID: &project.ID})
	require.NoError(t, err)

	list, err := f.projects.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].TotalTasks)
	assert.Equal(t, 0, list[0].CompletedTasks)

	require.NoError(t, f.projects.SetArchived(ctx, project.ID, true))
	list, err = f.projects.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.projects.Delete(ctx, project.ID))
	assert.ErrorIs(t, f.projects.Delete(ctx, project.ID), service.ErrProjectNotFound)
	assert.ErrorIs(t, f.projects.SetArchived(ctx, project.ID, false), service.ErrProjectNotFound)
}

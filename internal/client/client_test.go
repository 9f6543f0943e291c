package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/handler"
	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/repo"
	"github.com/BuzzLyutic/taskpad/internal/service"
)

func setupServer(t *testing.T) (*httptest.Server, *auth.TokenManager) {
	t.Helper()
	logger := zap.NewNop()
	tokens := auth.NewTokenManager(auth.Config{Secret: "client-test", Issuer: "taskpad", TokenTTL: time.Hour})
	router := handler.NewRouter(handler.RouterDeps{
		Tasks:  handler.NewTaskHandler(service.NewTaskService(repo.NewMemoryTaskRepo(), nil, logger), logger),
		Notes:  handler.NewNoteHandler(service.NewNoteService(repo.NewMemoryNoteRepo(), nil, logger), logger),
		Health: handler.NewHealthHandler(logger, nil),
		Tokens: tokens,
		Logger: logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, tokens
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, owner string) func() string {
	t.Helper()
	tok, err := tokens.Issue(auth.Identity{UserID: owner})
	require.NoError(t, err)
	return func() string { return tok }
}

func TestTasks_RoundTrip(t *testing.T) {
	srv, tokens := setupServer(t)
	tasks := Tasks(New(srv.URL, tokenFor(t, tokens, "u1")))
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	list, err := tasks.List(ctx, "u1", model.TaskOrder)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := tasks.Create(ctx, model.NewTask("Buy milk", model.PriorityHigh).Stamp("t1", "u1", at))
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)

	_, err = tasks.Create(ctx, model.NewTask("Buy milk", "").Stamp("t1", "u1", at))
	assert.ErrorIs(t, err, model.ErrConflict)

	done := model.StatusDone
	updated, err := tasks.Update(ctx, "t1", model.TaskPatch{Status: &done, UpdatedAt: at.Add(time.Second)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(at.Add(time.Second)))

	list, err = tasks.List(ctx, "u1", model.TaskOrder)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.StatusDone, list[0].Status)

	require.NoError(t, tasks.Delete(ctx, "t1"))
	err = tasks.Delete(ctx, "t1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "api: 404 not found", apiErr.Error())
}

func TestNotes_OwnerScoping(t *testing.T) {
	srv, tokens := setupServer(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	alice := Notes(New(srv.URL, tokenFor(t, tokens, "alice")))
	bob := Notes(New(srv.URL, tokenFor(t, tokens, "bob")))

	_, err := alice.Create(ctx, model.NewNote("Secret", "", "").Stamp("n1", "alice", at))
	require.NoError(t, err)

	_, err = bob.List(ctx, "alice", model.NoteOrder)
	assert.ErrorIs(t, err, model.ErrForbidden)

	title := "Mine now"
	_, err = bob.Update(ctx, "n1", model.NotePatch{Title: &title})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = bob.Create(ctx, model.NewNote("Spoof", "", "").Stamp("n2", "alice", at))
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := setupServer(t)

	_, err := Tasks(New(srv.URL, nil)).List(context.Background(), "u1", model.TaskOrder)
	assert.True(t, IsUnauthorized(err))

	_, err = Tasks(New(srv.URL, func() string { return "forged" })).List(context.Background(), "u1", model.TaskOrder)
	assert.True(t, IsUnauthorized(err))
}

func TestClient_ValidationMessage(t *testing.T) {
	srv, tokens := setupServer(t)
	tasks := Tasks(New(srv.URL, tokenFor(t, tokens, "u1")))

	_, err := tasks.Create(context.Background(), model.Task{ID: "t1", Title: "x", Status: "archived", Priority: model.PriorityLow})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestClient_Unreachable(t *testing.T) {
	srv, _ := setupServer(t)
	url := srv.URL
	srv.Close()

	_, err := Tasks(New(url, nil)).List(context.Background(), "u1", model.TaskOrder)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport errors are not API errors")
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("NewStorage error: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, store *Storage, username string) string {
	t.Helper()
	user, err := store.CreateUser(CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return user.ID
}

func publishTestVideo(t *testing.T, store *Storage, ownerID, title string) string {
	t.Helper()
	video, err := store.PublishVideo(PublishVideoParams{
		OwnerID:      ownerID,
		Title:        title,
		Description:  "about " + title,
		VideoURL:     "https://cdn.example.com/" + title + ".mp4",
		ThumbnailURL: "https://cdn.example.com/" + title + ".jpg",
		Duration:     120,
	})
	if err != nil {
		t.Fatalf("PublishVideo %s: %v", title, err)
	}
	return video.ID
}

func TestCreateUserNormalizesAndRejectsDuplicates(t *testing.T) {
	store := newTestStore(t)

	user, err := store.CreateUser(CreateUserParams{
		Username: "  Alice  ",
		Email:    "Alice@Example.COM",
		FullName: "Alice Example",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected normalized username alice, got %q", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}

	if _, err := store.CreateUser(CreateUserParams{
		Username: "ALICE",
		Email:    "other@example.com",
		FullName: "Alice Twin",
		Password: "secret",
	}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
	if _, err := store.CreateUser(CreateUserParams{
		Username: "alice2",
		Email:    "alice@example.com",
		FullName: "Alice Twin",
		Password: "secret",
	}); err == nil {
		t.Fatalf("expected duplicate email to be rejected")
	}
}

func TestFindUserByUsernameIgnoresCase(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "mallory")

	user, ok := store.FindUserByUsername("  MALLORY  ")
	if !ok {
		t.Fatal("expected case-insensitive lookup to find user")
	}
	if user.Username != "mallory" {
		t.Fatalf("expected mallory, got %q", user.Username)
	}
}

func TestAuthenticateUserByUsernameOrEmail(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "bob")

	if _, err := store.AuthenticateUser("bob", "correct horse"); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	if _, err := store.AuthenticateUser("bob@example.com", "correct horse"); err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if _, err := store.AuthenticateUser("bob", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.AuthenticateUser("nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestSetUserPasswordReplacesVerifier(t *testing.T) {
	store := newTestStore(t)
	userID := createTestUser(t, store, "carol")

	if err := store.SetUserPassword(userID, "new phrase"); err != nil {
		t.Fatalf("SetUserPassword: %v", err)
	}
	if _, err := store.AuthenticateUser("carol", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, err := store.AuthenticateUser("carol", "new phrase"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
}

func TestPersistFailureRollsBackUserCreation(t *testing.T) {
	store := newTestStore(t)
	store.persistOverride = func(dataset) error {
		return errors.New("persist failed")
	}

	if _, err := store.CreateUser(CreateUserParams{
		Username: "dave",
		Email:    "dave@example.com",
		FullName: "Dave",
		Password: "secret",
	}); err == nil {
		t.Fatalf("expected CreateUser error when persist fails")
	}

	store.persistOverride = nil
	if _, ok := store.FindUserByUsername("dave"); ok {
		t.Fatalf("expected rolled-back user to be absent")
	}
}

func TestStorageReloadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	userID := createTestUser(t, store, "erin")
	videoID := publishTestVideo(t, store, userID, "intro")

	reloaded, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage reload: %v", err)
	}
	if _, ok := reloaded.GetUser(userID); !ok {
		t.Fatalf("expected user to survive reload")
	}
	video, ok := reloaded.GetVideo(videoID)
	if !ok {
		t.Fatalf("expected video to survive reload")
	}
	if video.Title != "intro" {
		t.Fatalf("expected title intro, got %q", video.Title)
	}
}

func TestWatchHistoryDedupesAndOrders(t *testing.T) {
	store := newTestStore(t)
	userID := createTestUser(t, store, "frank")
	first := publishTestVideo(t, store, userID, "first")
	second := publishTestVideo(t, store, userID, "second")

	for _, videoID := range []string{first, second, first} {
		if err := store.RecordWatchEvent(userID, videoID); err != nil {
			t.Fatalf("RecordWatchEvent: %v", err)
		}
	}

	history, err := store.WatchHistory(userID)
	if err != nil {
		t.Fatalf("WatchHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].ID != first || history[1].ID != second {
		t.Fatalf("expected rewatched video first, got %s then %s", history[0].ID, history[1].ID)
	}

	if err := store.DeleteVideo(second); err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}
	history, err = store.WatchHistory(userID)
	if err != nil {
		t.Fatalf("WatchHistory after delete: %v", err)
	}
	if len(history) != 1 || history[0].ID != first {
		t.Fatalf("expected deleted video dropped from history, got %+v", history)
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Ping(cancelled); err == nil {
		t.Fatalf("expected Ping to fail with cancelled context")
	}
}

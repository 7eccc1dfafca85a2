package api

import (
	"net/http"
	"testing"

	"github.com/AdityaBhosale22/vidtube/internal/auth"
	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

func newTestHandler(t *testing.T) (*Handler, *storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage("")
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	codec, err := auth.NewCodec([]byte("access-secret"), []byte("refresh-secret"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	tokens := auth.NewService(codec, auth.NewMemoryRefreshTokenStore(), store)
	return NewHandler(store, tokens), store
}

func registerTestUser(t *testing.T, store *storage.Storage, username string) models.User {
	t.Helper()
	user, err := store.CreateUser(storage.CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return user
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not found", name)
	return nil
}

func withUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(ContextWithUser(r.Context(), user))
}

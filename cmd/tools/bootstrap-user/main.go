// Command bootstrap-user seeds or updates an account in the datastore so a
// fresh deployment has someone to sign in as.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

func main() {
	var (
		dataPath string
		username string
		email    string
		fullName string
		password string
	)

	flag.StringVar(&dataPath, "data", "data/store.json", "Path to the JSON datastore (store.json)")
	flag.StringVar(&username, "username", "", "Username for the account")
	flag.StringVar(&email, "email", "", "Email address for the account")
	flag.StringVar(&fullName, "name", "", "Full name for the account")
	flag.StringVar(&password, "password", "", "Password for the account")
	flag.Parse()

	if strings.TrimSpace(username) == "" {
		fatalf("--username is required")
	}
	if strings.TrimSpace(email) == "" {
		fatalf("--email is required")
	}
	if len(password) < 8 {
		fatalf("--password must be at least 8 characters")
	}

	store, err := storage.NewStorage(dataPath)
	if err != nil {
		fatalf("open datastore: %v", err)
	}

	user, created, err := bootstrapUser(store, username, email, fullName, password)
	if err != nil {
		fatalf("bootstrap user: %v", err)
	}

	state := "updated"
	if created {
		state = "created"
	}
	fmt.Printf("User %s (%s) %s successfully.\n", user.Username, user.Email, state)
	fmt.Println("Remember to rotate this password after the first login.")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func bootstrapUser(store *storage.Storage, username, email, fullName, password string) (models.User, bool, error) {
	username = strings.TrimSpace(username)
	if existing, ok := store.FindUserByUsername(username); ok {
		return updateUser(store, existing, fullName, password)
	}
	if existing, ok := store.FindUserByEmail(email); ok {
		return updateUser(store, existing, fullName, password)
	}

	if strings.TrimSpace(fullName) == "" {
		fullName = username
	}
	user, err := store.CreateUser(storage.CreateUserParams{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: password,
	})
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func updateUser(store *storage.Storage, existing models.User, fullName, password string) (models.User, bool, error) {
	updated := existing
	if name := strings.TrimSpace(fullName); name != "" && name != existing.FullName {
		var err error
		updated, err = store.UpdateUser(existing.ID, storage.UserUpdate{FullName: &name})
		if err != nil {
			return models.User{}, false, err
		}
	}
	if err := store.SetUserPassword(existing.ID, password); err != nil {
		return models.User{}, false, err
	}
	return updated, false, nil
}

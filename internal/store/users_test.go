package store

import (
	"context"
	"testing"

	"github.com/erazemk/omara/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "owner", "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "owner" {
		t.Errorf("expected username 'owner', got %q", user.Username)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.PasswordHash != "hash123" {
		t.Errorf("expected stored hash, got %q", got.PasswordHash)
	}

	byName, err := GetUserByUsername(ctx, database, "owner")
	if err != nil || byName == nil || byName.ID != user.ID {
		t.Errorf("GetUserByUsername = %+v, %v", byName, err)
	}

	n, err := CountUsers(ctx, database)
	if err != nil || n != 1 {
		t.Errorf("CountUsers = %d, %v", n, err)
	}
}

func TestGetMissingUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := GetUserByUsername(ctx, database, "nobody")
	if err != nil || u != nil {
		t.Errorf("expected nil, nil; got %+v, %v", u, err)
	}
	u, err = GetUser(ctx, database, 42)
	if err != nil || u != nil {
		t.Errorf("expected nil, nil; got %+v, %v", u, err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "owner", "a"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "owner", "b"); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "owner", "old")
	if err := UpdateUserPassword(ctx, database, user.ID, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected new hash, got %q", got.PasswordHash)
	}
}

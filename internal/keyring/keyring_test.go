package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://habitus@localhost:5432/habitus?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, connStr)
	}
}

func TestSetEmptyValue(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(EntryWebhookSecret, ""); err == nil {
		t.Error("Set() with an empty value should return an error")
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(EntryWebhookSecret, "s3cret"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); err != ErrNotFound {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	secret, err := Get(EntryWebhookSecret)
	if err != nil || secret != "s3cret" {
		t.Errorf("Get(webhook) = %q, %v", secret, err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = Delete(EntryWebhookSecret)
	if err := Delete(EntryWebhookSecret); err != ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}

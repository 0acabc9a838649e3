package identity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUser_JSONExcludesPasswordHash(t *testing.T) {
	u := User{
		ID:           uuid.New(),
		FullName:     "Alice Admin",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         "Admin",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(data)

	if strings.Contains(body, "password") {
		t.Error("expected password hash to be excluded from JSON")
	}
	for _, key := range []string{"full_name", "email", "role", "is_active"} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s to be present", key)
		}
	}
}

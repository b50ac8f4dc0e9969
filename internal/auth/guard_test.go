package auth

import (
	"errors"
	"testing"

	"github.com/jacentio/stevedore/internal/apierr"
)

func TestOwnerGuard(t *testing.T) {
	tests := []struct {
		name      string
		subject   string
		owner     string
		forbidden bool
	}{
		{"matching owner", "auth0|alice", "auth0|alice", false},
		{"different owner", "auth0|bob", "auth0|alice", true},
		{"unowned record", "auth0|bob", "", false},
		{"anonymous vs owned", "", "auth0|alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := OwnerGuard{}.Authorize(tt.subject, tt.owner)
			if tt.forbidden {
				var apiErr *apierr.Error
				if !errors.As(err, &apiErr) || apiErr.Status != 403 {
					t.Errorf("expected forbidden, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected allowed, got %v", err)
			}
		})
	}
}

func TestOpenGuard(t *testing.T) {
	if err := (OpenGuard{}).Authorize("anyone", "someone-else"); err != nil {
		t.Errorf("expected open guard to allow, got %v", err)
	}
	if err := (OpenGuard{}).Authorize("", ""); err != nil {
		t.Errorf("expected open guard to allow anonymous, got %v", err)
	}
}

package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// ParticipantResolver maps participant emails to existing users.
type ParticipantResolver struct {
	users store.UserStore
}

// NewParticipantResolver creates a resolver backed by users.
func NewParticipantResolver(users store.UserStore) *ParticipantResolver {
	return &ParticipantResolver{users: users}
}

// Resolve returns the users whose email matches one of emails exactly. Emails without an
// account are dropped and duplicates collapse.
func (r *ParticipantResolver) Resolve(ctx context.Context, emails []string) ([]*models.User, error) {
	seen := make(map[string]struct{}, len(emails))
	unique := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		unique = append(unique, email)
	}

	if len(unique) == 0 {
		return nil, nil
	}

	users, err := r.users.ListByEmails(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	return users, nil
}

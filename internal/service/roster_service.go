package service

import (
	"context"
	"fmt"

	"claimbot/internal/model"
)

// DefaultRosterLimit matches the number of users the roster shows by default.
const DefaultRosterLimit = 5

// RosterStore lists stored users.
type RosterStore interface {
	List(ctx context.Context, limit int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
}

// Roster is a snapshot of the known users.
type Roster struct {
	Total int64
	Users []model.User
}

// Lines renders one line per listed user.
func (r Roster) Lines() []string {
	lines := make([]string, 0, len(r.Users))
	for _, user := range r.Users {
		lines = append(lines, fmt.Sprintf("%d %s %s", user.ID, user.PlatformID, user.DisplayName))
	}
	return lines
}

// RosterService builds roster snapshots for the CLI and scheduled reports.
type RosterService struct {
	users RosterStore
}

func NewRosterService(users RosterStore) *RosterService {
	return &RosterService{users: users}
}

func (s *RosterService) Report(ctx context.Context, limit int) (Roster, error) {
	if limit <= 0 {
		limit = DefaultRosterLimit
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return Roster{}, fmt.Errorf("roster: %w", err)
	}
	users, err := s.users.List(ctx, limit)
	if err != nil {
		return Roster{}, fmt.Errorf("roster: %w", err)
	}
	return Roster{Total: total, Users: users}, nil
}

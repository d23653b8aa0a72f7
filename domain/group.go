package domain

import "time"

type GroupID string

// Group is a named chat room reachable through a short invite code.
// Membership is mutated by the group service only; the live chat core
// reads it for the admission check.
type Group struct {
	ID        GroupID
	Name      string
	Code      string
	Members   []string
	CreatedBy string
	CreatedAt time.Time
}

func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

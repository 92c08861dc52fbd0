package users

import "time"

// TeamSize buckets accepted during registration
const (
	TeamSizeSolo   = "1"
	TeamSizeSmall  = "2-10"
	TeamSizeMedium = "11-50"
	TeamSizeLarge  = "51-200"
	TeamSizeXLarge = "200+"
)

// TeamSizes lists every accepted team size bucket
var TeamSizes = []string{TeamSizeSolo, TeamSizeSmall, TeamSizeMedium, TeamSizeLarge, TeamSizeXLarge}

// Snapshot is the minimal user view cached inside a session token.
// The external auth service owns the durable user record; the gateway only
// carries this snapshot for the token's lifetime.
type Snapshot struct {
	ID        string    `json:"id"`                   // Unique identifier for the user
	Email     string    `json:"email"`                // User's email address
	FirstName string    `json:"first_name,omitempty"` // First name of the user
	LastName  string    `json:"last_name,omitempty"`  // Last name of the user
	Company   string    `json:"company,omitempty"`    // Company name, optional
	LastLogin time.Time `json:"last_login,omitempty"` // Last time the user logged in

	Verified bool `json:"verified,omitempty"` // Verified, has the user verified who they are
	Blocked  bool `json:"blocked,omitempty"`  // Blocked, has the user been blocked from logging in
}

// DisplayName returns the user's full name, falling back to the email address
func (s *Snapshot) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Email
	}
}

// ValidTeamSize reports whether size is one of the accepted buckets
func ValidTeamSize(size string) bool {
	for _, t := range TeamSizes {
		if t == size {
			return true
		}
	}
	return false
}

package models

import "time"

// Profile is the public account record of a user. Its id is the user id, so
// a profile is owned by itself.
type Profile struct {
	ID        string     `json:"id"`
	Username  *string    `json:"username"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	Website   *string    `json:"website"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (p Profile) Key() string   { return p.ID }
func (p Profile) Owner() string { return p.ID }

// DisplayName prefers the full name, then the username.
func (p Profile) DisplayName() string {
	switch {
	case p.FullName != nil && *p.FullName != "":
		return *p.FullName
	case p.Username != nil && *p.Username != "":
		return *p.Username
	default:
		return ""
	}
}

type ProfilePatch struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Website   *string
}

func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.AvatarURL == nil && p.Website == nil
}

// Apply returns a copy of pr with the patch fields set.
func (p ProfilePatch) Apply(pr Profile) Profile {
	if p.Username != nil {
		pr.Username = p.Username
	}
	if p.FullName != nil {
		pr.FullName = p.FullName
	}
	if p.AvatarURL != nil {
		pr.AvatarURL = p.AvatarURL
	}
	if p.Website != nil {
		pr.Website = p.Website
	}
	return pr
}

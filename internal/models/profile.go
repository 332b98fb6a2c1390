package models

// RoleAdmin is the only role allowed into the console.
const RoleAdmin = "admin"

// Profile is the authenticated user as returned by /users/login and /users/profile.
type Profile struct {
	ID        string `json:"_id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"token,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// DisplayName returns the best available human name.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	if p.FirstName != "" || p.LastName != "" {
		return trimJoin(p.FirstName, p.LastName)
	}
	return p.Email
}

func trimJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

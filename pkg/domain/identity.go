package domain

// Identity is the authenticated administrator: profile plus bearer token.
type Identity struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
	SubjectID   string `json:"subjectId"`
	Token       string `json:"token,omitempty"`
}

// LoggedIn reports whether the identity carries both a subject ID and a token.
// Either one alone counts as logged out.
func (i *Identity) LoggedIn() bool {
	return i != nil && i.SubjectID != "" && i.Token != ""
}

// Name returns the display name, falling back to the login identifier.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Identifier
}

// Profile is the identity part of a login reply.
type Profile struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
	SubjectID   string `json:"subjectId"`
}

// LoginRequest is the payload for the login exchange.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// LoginResponse is a successful login exchange.
type LoginResponse struct {
	Profile Profile `json:"identity"`
	Token   string  `json:"token"`
}

// Identity merges the profile and token into a single record.
func (r LoginResponse) Identity() Identity {
	return Identity{
		Identifier:  r.Profile.Identifier,
		DisplayName: r.Profile.DisplayName,
		SubjectID:   r.Profile.SubjectID,
		Token:       r.Token,
	}
}

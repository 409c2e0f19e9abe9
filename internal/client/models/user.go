package models

import (
	"encoding/json"
	"strings"
)

// UserProfile is the backend's identity record. Only the fields below are
// interpreted; the original JSON is kept so the profile round-trips intact.
type UserProfile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`

	raw json.RawMessage
}

type userProfileAlias UserProfile

func (u *UserProfile) UnmarshalJSON(b []byte) error {
	var a userProfileAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*u = UserProfile(a)
	u.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (u UserProfile) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	return json.Marshal(userProfileAlias(u))
}

// DisplayName picks the most readable identifier available.
func (u UserProfile) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}

// Session is the authenticated identity and its bearer token. Either both
// are set or neither is.
type Session struct {
	User  *UserProfile
	Token string
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

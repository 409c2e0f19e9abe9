package models

// LoginRequest is the body of POST /login. Identifier is an email or phone.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResult is returned by both /login and /register.
type AuthResult struct {
	User  *UserProfile `json:"user"`
	Token string       `json:"token"`
}

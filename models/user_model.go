package models

// User is a traveller account as returned by the remote service.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

// UnknownUser is shown for senders the client cannot resolve.
var UnknownUser = User{Username: "Unknown User"}

type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegistrationData is the body of POST /register. Empty profile fields are
// omitted so the remote stores them as unset.
type RegistrationData struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"tripmate/models"
	"tripmate/utils/errors"
)

// Register creates an account. The remote does not open a session on
// registration; callers log in afterwards.
func (c *APIClient) Register(ctx context.Context, data models.RegistrationData) (models.User, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return models.User{}, errors.Wrap(err, "ENCODE_ERROR", "Failed to encode registration", http.StatusBadRequest).WithKind(errors.KindAuth)
	}
	var user models.User
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/register",
		body:        bytes.NewReader(body),
		contentType: "application/json",
		public:      true,
		kind:        errors.KindAuth,
	}, &user)
	return user, err
}

// Login exchanges credentials for a bearer token. The remote expects an
// OAuth2 password form, not JSON.
func (c *APIClient) Login(ctx context.Context, creds models.LoginCredentials) (models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var resp models.TokenResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		public:      true,
		kind:        errors.KindAuth,
	}, &resp)
	return resp, err
}

// internal/app/system/backend/auth.go
package backend

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dalemusser/modconsole/internal/domain/models"
)

// ErrNoToken is returned when OTP verification succeeds but the response
// carries no token.
var ErrNoToken = errors.New("backend: verification response has no token")

// SignIn is the result of a successful OTP verification.
type SignIn struct {
	Token string
	User  models.User
}

// RequestOTP asks the backend to email a one-time code to email.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	_, err := c.Post(ctx, "/auth/otp/request", map[string]string{"email": email})
	return err
}

// VerifyOTP exchanges email and code for a token and the signed-in user.
// The token may be reported as token or access_token, at the top level or
// under data.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (SignIn, error) {
	raw, err := c.Post(ctx, "/auth/otp/verify", map[string]string{"email": email, "code": code})
	if err != nil {
		return SignIn{}, err
	}
	return parseSignIn(raw)
}

func parseSignIn(raw json.RawMessage) (SignIn, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return SignIn{}, err
	}
	token, ok := obj.String("token", "access_token")
	if !ok {
		return SignIn{}, ErrNoToken
	}
	user, ok := obj.Object("user")
	if !ok {
		user = models.Raw{}
	}
	return SignIn{Token: token, User: models.UserFromRaw(user)}, nil
}

// Logout revokes the token c was built with (see WithToken).
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Post(ctx, "/auth/logout", map[string]any{})
	return err
}

// Stats fetches the dashboard totals from GET /admin/stats.
func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	raw, err := c.Get(ctx, "/admin/stats", nil)
	if err != nil {
		return models.DashboardStats{}, err
	}
	obj, err := decodeObject(raw)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return models.DashboardStatsFromRaw(obj), nil
}

package remote

import (
	"context"
	"net/http"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
)

// Login exchanges credentials for a backend profile and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*adapter.RemoteLogin, error) {
	var payload LoginPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &payload); err != nil {
		return nil, err
	}

	role := entity.UserRole(payload.Role)
	if role != entity.UserRoleAdmin {
		role = entity.UserRoleMember
	}

	return &adapter.RemoteLogin{
		UserID: payload.UserID,
		Name:   payload.Name,
		Email:  payload.Email,
		Role:   role,
		Token:  payload.Token,
	}, nil
}

var _ adapter.RemoteAuthService = (*Client)(nil)

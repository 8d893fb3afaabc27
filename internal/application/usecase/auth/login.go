// Package auth contains session use cases of the companion service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// LoginInput represents the input for login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the output of login.
type LoginOutput struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     *entity.Session
}

// LoginUseCase forwards credentials to the backend and opens a companion session.
type LoginUseCase struct {
	remote       adapter.RemoteAuthService
	sessions     adapter.SessionStore
	tokenService adapter.TokenService
	sessionTTL   time.Duration
	now          func() time.Time
}

// NewLoginUseCase creates a new LoginUseCase instance.
func NewLoginUseCase(
	remote adapter.RemoteAuthService,
	sessions adapter.SessionStore,
	tokenService adapter.TokenService,
	sessionTTL time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		remote:       remote,
		sessions:     sessions,
		tokenService: tokenService,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

// Execute performs the login.
func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"email and password are required",
			domainerror.ErrInvalidCredentials,
		)
	}

	login, err := uc.remote.Login(ctx, email, input.Password)
	if err != nil {
		var failure *domainerror.RemoteFailure
		if errors.As(err, &failure) && (failure.StatusCode == http.StatusUnauthorized || failure.StatusCode == http.StatusForbidden) {
			return nil, domainerror.NewAuthError(
				domainerror.ErrCodeInvalidCredentials,
				"invalid email or password",
				domainerror.ErrInvalidCredentials,
			)
		}
		return nil, err
	}

	now := uc.now().UTC()
	session := &entity.Session{
		ID:          uuid.NewString(),
		UserID:      login.UserID,
		UserName:    login.Name,
		Email:       login.Email,
		Role:        login.Role,
		LoggedIn:    true,
		RemoteToken: login.Token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.sessionTTL),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := uc.tokenService.GenerateAccessToken(session.ID, session.UserID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User logged in", "user_id", session.UserID, "session_id", session.ID)

	return &LoginOutput{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		Session:     session,
	}, nil
}

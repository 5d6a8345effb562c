package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studiowebux/docportal/internal/types"
)

// OTPRequest is the backend's answer to a login request
type OTPRequest struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// NormalizePhone returns phone in "+<digits>" form
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return "+" + strings.TrimPrefix(phone, "+")
}

// SendOTP asks the backend to text a one-time password to phone
func (s *Service) SendOTP(ctx context.Context, phone string) (OTPRequest, error) {
	if strings.Trim(phone, "+ ") == "" {
		return OTPRequest{}, fmt.Errorf("phone number is required")
	}

	var out struct {
		Register OTPRequest `json:"registerWithoutPasswordV2"`
	}
	vars := map[string]any{"phone": NormalizePhone(phone)}
	if err := s.auth.Do(ctx, registerMutation, vars, nil, &out); err != nil {
		return OTPRequest{}, fmt.Errorf("failed to send OTP: %w", err)
	}
	return out.Register, nil
}

// VerifyOTP exchanges a one-time password for session tokens and saves them
func (s *Service) VerifyOTP(ctx context.Context, phone, otp string) (types.AuthTokens, error) {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return types.AuthTokens{}, fmt.Errorf("OTP is required")
	}

	var out struct {
		Verify struct {
			AuthToken    string `json:"auth_token"`
			RefreshToken string `json:"refresh_token"`
			ID           string `json:"id"`
			Status       string `json:"status"`
		} `json:"verifyOTPV2"`
	}
	vars := map[string]any{"phone1": NormalizePhone(phone), "otp1": otp}
	if err := s.auth.Do(ctx, verifyOTPMutation, vars, nil, &out); err != nil {
		return types.AuthTokens{}, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if out.Verify.AuthToken == "" {
		return types.AuthTokens{}, fmt.Errorf("failed to verify OTP: status %q", out.Verify.Status)
	}

	tokens := types.AuthTokens{
		AccessToken:  out.Verify.AuthToken,
		RefreshToken: out.Verify.RefreshToken,
		UserID:       out.Verify.ID,
	}
	if err := s.session.SaveTokens(tokens); err != nil {
		return types.AuthTokens{}, err
	}

	saved, _, err := s.session.Tokens()
	return saved, err
}

// Refresh trades the saved refresh token for a new session. Any failure
// logs the user out.
func (s *Service) Refresh(ctx context.Context) (types.AuthTokens, error) {
	tokens, ok, err := s.session.Tokens()
	if err != nil {
		return types.AuthTokens{}, err
	}
	if !ok || tokens.RefreshToken == "" || tokens.UserID == "" {
		return types.AuthTokens{}, ErrNotAuthenticated
	}

	var out struct {
		Refresh struct {
			AuthToken    string `json:"auth_token"`
			RefreshToken string `json:"refresh_token"`
			Status       string `json:"status"`
			ID           string `json:"id"`
		} `json:"refreshToken"`
	}
	vars := map[string]any{"refresh_token": tokens.RefreshToken, "user_id": tokens.UserID}

	err = s.api.Do(ctx, refreshTokenMutation, vars, nil, &out)
	if err == nil && out.Refresh.Status != "success" {
		err = fmt.Errorf("status %q", out.Refresh.Status)
	}
	if err != nil {
		slog.Warn("token refresh failed, clearing session", "error", err)
		if clearErr := s.session.ClearTokens(); clearErr != nil {
			slog.Error("failed to clear session", "error", clearErr)
		}
		return types.AuthTokens{}, fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshed := types.AuthTokens{
		AccessToken:  out.Refresh.AuthToken,
		RefreshToken: out.Refresh.RefreshToken,
		UserID:       out.Refresh.ID,
	}
	if refreshed.UserID == "" {
		refreshed.UserID = tokens.UserID
	}
	if err := s.session.SaveTokens(refreshed); err != nil {
		return types.AuthTokens{}, err
	}
	saved, _, err := s.session.Tokens()
	return saved, err
}

// EnsureFresh refreshes the session when it is close to expiry
func (s *Service) EnsureFresh(ctx context.Context) error {
	if !s.session.NeedsRefresh() {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}

// Logout revokes the refresh token on a best-effort basis. Local tokens are
// always cleared.
func (s *Service) Logout(ctx context.Context) error {
	tokens, ok, _ := s.session.Tokens()
	if ok && tokens.RefreshToken != "" {
		vars := map[string]any{"refreshToken": tokens.RefreshToken}
		if err := s.api.Do(ctx, logoutMutation, vars, nil, nil); err != nil {
			slog.Warn("logout request failed", "error", err)
		}
	}
	return s.session.ClearTokens()
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studiowebux/docportal/internal/portal"
	"github.com/studiowebux/docportal/internal/runner"
	"github.com/studiowebux/docportal/internal/types"
)

// LoginOptions carry values that would otherwise be prompted for
type LoginOptions struct {
	Phone string
	OTP   string
}

// Login runs the phone/OTP flow and saves the session
func (a *App) Login(ctx context.Context, opts LoginOptions) error {
	if err := a.Config.RequireGraphQL(); err != nil {
		return err
	}
	reader := bufio.NewReader(a.In)

	phone := opts.Phone
	if phone == "" {
		var err error
		if phone, err = a.prompt(reader, "Phone number (with country code): "); err != nil {
			return err
		}
	}

	req, err := a.Portal.SendOTP(ctx, phone)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Err, "OTP sent to %s (status: %s)\n", portal.NormalizePhone(phone), req.Status)

	otp := opts.OTP
	if otp == "" {
		if otp, err = a.prompt(reader, "Enter OTP: "); err != nil {
			return err
		}
	}

	tokens, err := a.Portal.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return err
	}

	expires := tokens.IssuedAt.Add(time.Duration(tokens.ExpiresIn) * time.Second)
	fmt.Fprintf(a.Out, "%sLogged in%s (session valid until %s)\n", colorGreen, colorReset, expires.Format(time.RFC1123))
	return nil
}

// Logout ends the session
func (a *App) Logout(ctx context.Context) error {
	if err := a.Portal.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Logged out")
	return nil
}

// Status prints who is logged in and which environment is active
func (a *App) Status(ctx context.Context) error {
	if err := a.Portal.EnsureFresh(ctx); err != nil {
		fmt.Fprintf(a.Err, "%swarning: %v%s\n", colorYellow, err, colorReset)
	}

	tokens, ok, err := a.Session.Tokens()
	if err != nil {
		return err
	}
	if !ok || !a.Session.IsAuthenticated() {
		fmt.Fprintln(a.Out, "Not logged in")
	} else {
		expires := tokens.IssuedAt.Add(time.Duration(tokens.ExpiresIn) * time.Second)
		fmt.Fprintf(a.Out, "Logged in as %s (expires %s)\n", tokens.UserID, expires.Format(time.RFC1123))
	}

	if org, ok := a.Session.Organization(); ok {
		fmt.Fprintf(a.Out, "Organization: %s\n", org.ID)
	}
	if env := a.Session.ActiveEnvironment(); env != "" {
		fmt.Fprintf(a.Out, "Environment: %s\n", env)
	}
	creds, err := a.Session.Credentials()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Saved credentials: %d\n", len(creds))
	return nil
}

// requireLogin refreshes the session when due and fails when nobody is
// logged in
func (a *App) requireLogin(ctx context.Context) error {
	if err := a.Config.RequireGraphQL(); err != nil {
		return err
	}
	if err := a.Portal.EnsureFresh(ctx); err != nil {
		return err
	}
	if !a.Session.IsAuthenticated() {
		return fmt.Errorf("%w: run 'docportal login' first", portal.ErrNotAuthenticated)
	}
	return nil
}

// ListKeys prints the locally saved client credentials and whether the
// account has an API client
func (a *App) ListKeys(ctx context.Context) error {
	creds, err := a.Session.Credentials()
	if err != nil {
		return err
	}

	if len(creds) == 0 {
		fmt.Fprintln(a.Out, "No saved credentials")
	}
	for _, c := range creds {
		label := c.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(a.Out, "%s  %s  %s  %s\n", c.ClientID, maskSecret(c.ClientSecret), label, c.SavedAt.Format(time.DateTime))
	}

	if a.requireLogin(ctx) != nil {
		return nil
	}
	ok, err := a.Portal.HasClient(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.Out, "\nNo API client on this account yet: run 'docportal keys create'")
	}
	return nil
}

// CreateKey generates a client id/secret pair. The secret is shown once.
func (a *App) CreateKey(ctx context.Context, label string) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	cred, err := a.Portal.CreateClient(ctx, label)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Client ID:     %s\n", cred.ClientID)
	fmt.Fprintf(a.Out, "Client Secret: %s\n", cred.ClientSecret)
	fmt.Fprintf(a.Err, "%sStore the secret now; it cannot be shown again.%s\n", colorYellow, colorReset)
	return nil
}

// AddKey saves an existing client id/secret pair locally
func (a *App) AddKey(clientID, clientSecret, label string) error {
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("client id and secret are required")
	}
	return a.Session.AddCredential(types.Credential{ClientID: clientID, ClientSecret: clientSecret, Label: label})
}

// RemoveKey forgets a locally saved credential
func (a *App) RemoveKey(clientID string) error {
	return a.Session.RemoveCredential(clientID)
}

// Token mints an API bearer token from the latest saved credential
func (a *App) Token(ctx context.Context) error {
	token, err := a.Portal.RegenerateToken(ctx)
	if errors.Is(err, portal.ErrNoCredentials) {
		return fmt.Errorf("%w: run 'docportal keys create' or 'docportal keys add'", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, token)
	return nil
}

// Whitelist prints the whitelisted IP addresses
func (a *App) Whitelist(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	ips, err := a.Portal.Whitelist(ctx)
	if err != nil {
		return err
	}
	if len(ips) == 0 {
		fmt.Fprintln(a.Out, "No IP addresses whitelisted yet")
		return nil
	}
	for _, ip := range ips {
		fmt.Fprintln(a.Out, ip)
	}
	return nil
}

// WhitelistAdd whitelists ip, or the caller's public IP when ip is empty
func (a *App) WhitelistAdd(ctx context.Context, ip string) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	if ip == "" {
		ip = runner.PublicIP(ctx, a.Config.IPEchoURL)
		if ip == "" {
			return fmt.Errorf("could not determine your public IP, pass it explicitly")
		}
		fmt.Fprintf(a.Err, "Using public IP %s\n", ip)
	}

	ips, err := a.Portal.AddIP(ctx, ip)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%sAdded %s%s (%d whitelisted)\n", colorGreen, ip, colorReset, len(ips))
	return nil
}

// WhitelistRemove removes ip from the whitelist
func (a *App) WhitelistRemove(ctx context.Context, ip string) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	ips, err := a.Portal.RemoveIP(ctx, ip)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Removed %s (%d whitelisted)\n", ip, len(ips))
	return nil
}

// ShowWebhook prints the webhook configuration
func (a *App) ShowWebhook(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	hook, err := a.Portal.Webhook(ctx)
	if err != nil {
		return err
	}
	if hook.URL == "" {
		fmt.Fprintln(a.Out, "No webhook configured")
		return nil
	}
	state := "disabled"
	if hook.Active {
		state = "enabled"
	}
	fmt.Fprintf(a.Out, "%s (%s)\n", hook.URL, state)
	return nil
}

// SetWebhook saves the webhook configuration
func (a *App) SetWebhook(ctx context.Context, url string, active bool) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	if err := a.Portal.SetWebhook(ctx, portal.Webhook{URL: url, Active: active}); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Webhook configuration updated")
	return nil
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

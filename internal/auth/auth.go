package auth

import "os"

// Provider exposes the caller's authentication state to the session layer.
// The session never manages credentials itself; when the server disagrees
// about authentication it only asks the provider to redirect.
type Provider interface {
	// IsAuthenticated reports whether the local client holds a credential.
	IsAuthenticated() bool

	// RedirectToLogin invalidates the local credential and sends the user
	// to re-authenticate. Called at most once per session.
	RedirectToLogin()
}

// EnvProvider reads the credential from GEOSTREAK_AUTH_TOKEN. Redirecting
// records a pending message for the CLI to print on exit, since a terminal
// client cannot navigate to a login page.
type EnvProvider struct {
	redirected bool
}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) IsAuthenticated() bool {
	return os.Getenv("GEOSTREAK_AUTH_TOKEN") != ""
}

func (p *EnvProvider) RedirectToLogin() {
	p.redirected = true
	os.Unsetenv("GEOSTREAK_AUTH_TOKEN")
}

// Redirected reports whether a desync forced a re-login this run.
func (p *EnvProvider) Redirected() bool {
	return p.redirected
}

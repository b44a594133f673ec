package identity

import (
	"github.com/reglet-dev/skillguard/application/config"
)

// Profile is the normalized identity returned by a provider.
type Profile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// ExternalID is the store key of the profile, "provider|subject", or empty
// when the provider sent no subject.
func (p Profile) ExternalID() string {
	return externalID(p.Provider, p.Subject)
}

func externalID(provider, subject string) string {
	if subject == "" {
		return ""
	}
	return provider + "|" + subject
}

// NormalizeProfile extracts a Profile from OIDC claims or a provider's
// userinfo document. It understands the standard OIDC claim names and the
// GitHub style (numeric "id", "login").
func NormalizeProfile(provider string, claims config.Config) (Profile, error) {
	p := Profile{Provider: provider}
	if sub, ok := config.GetID(claims, "sub"); ok {
		p.Subject = sub
	} else if id, ok := config.GetID(claims, "id"); ok {
		p.Subject = id
	}
	p.Email, _ = config.GetFirstString(claims, "email", "mail", "upn")
	p.Name, _ = config.GetFirstString(claims, "name", "preferred_username", "login", "nickname")

	if p.Email == "" {
		return Profile{}, ErrMissingEmail
	}
	if p.Name == "" {
		p.Name = p.Email
	}
	return p, nil
}

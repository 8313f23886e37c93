package config

import "errors"

// DevSigningSecret is used outside production when no strong secret is set.
const DevSigningSecret = "relaydocs-dev-secret"

// placeholderSecret ships in example environment files.
const placeholderSecret = "replace-in-production"

// MinSecretLength is the shortest secret accepted as is.
const MinSecretLength = 32

// ErrWeakSecret is returned in production when JWT_SECRET is too short or
// still the placeholder.
var ErrWeakSecret = errors.New("JWT_SECRET must be set to a strong value (>=32 chars) in production")

// ResolveSigningSecret picks the session token secret.
func ResolveSigningSecret(secret string, production bool) (string, error) {
	if len(secret) >= MinSecretLength && secret != placeholderSecret {
		return secret, nil
	}
	if production {
		return "", ErrWeakSecret
	}
	return DevSigningSecret, nil
}

// DevTokensAllowed reports whether "dev-token-" bearer tokens are accepted.
// They never are in production; elsewhere only ALLOW_DEV_TOKENS=false
// turns them off.
func DevTokensAllowed(raw string, production bool) bool {
	if production {
		return false
	}
	return raw != "false"
}

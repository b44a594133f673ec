// Package identity authenticates humans through external identity
// providers and turns the result into an rbac.UserWithRole.
//
// OAuthManager runs the authorization code flow with golang.org/x/oauth2.
// SAMLManager consumes assertions that a SAML service provider library has
// already verified; XML handling is not part of this package.
// Both managers are constructed explicitly and passed to their consumers.
package identity

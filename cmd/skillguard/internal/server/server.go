// Package server wires the skillguard HTTP API.
package server

import (
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/reglet-dev/skillguard/application/identity"
	"github.com/reglet-dev/skillguard/application/skill"
	"github.com/reglet-dev/skillguard/application/validation"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/reglet-dev/skillguard/infrastructure/casbinrbac"
	"github.com/reglet-dev/skillguard/infrastructure/httpauth"
)

const maxBodyBytes = 1 << 20

// Dependencies bundles collaborators required by the API.
type Dependencies struct {
	Auth     *httpauth.Middleware
	Sessions *httpauth.SessionManager
	OAuth    *identity.OAuthManager // optional
	SAML     *identity.SAMLManager  // optional, requires Assertions
	Registry *skill.Registry
	Approver *skill.Approver
	Enforcer *casbinrbac.Enforcer
	Logger   *slog.Logger

	// Assertions verifies bridge tokens posted to the SAML endpoint.
	Assertions ports.AssertionVerifier

	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool
}

type api struct {
	Dependencies
	validator *validation.ManifestValidator
}

// NewRouter builds the chi router serving the API.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	a := &api{Dependencies: deps, validator: &validation.ManifestValidator{}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpauth.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/providers", a.listProviders)
			r.Get("/{provider}/login", a.login)
			r.Get("/{provider}/callback", a.callback)
			r.Post("/saml/{provider}/assertion", a.samlAssertion)
		})

		r.With(deps.Auth.Require(nil, false)).Get("/me", a.me)
		r.With(deps.Auth.Require([]rbac.Permission{rbac.PermUserRead}, false)).Get("/roles", a.roles)

		r.Route("/skills", func(r chi.Router) {
			r.With(deps.Auth.Require([]rbac.Permission{rbac.PermSkillRead}, false)).Get("/", a.listSkills)
			r.With(deps.Auth.Require([]rbac.Permission{rbac.PermSkillInstall}, false)).Post("/", a.installSkill)
			r.With(deps.Auth.Require([]rbac.Permission{rbac.PermSkillUninstall}, false)).Delete("/{name}", a.uninstallSkill)
			r.With(deps.Auth.Require([]rbac.Permission{rbac.PermSkillExecute}, false)).Post("/{name}/check", a.checkSkill)
		})
	})
	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.Logger.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	httpauth.WriteJSON(w, http.StatusBadRequest, entities.NewErrorDetail("validation", msg))
}

func notFound(w http.ResponseWriter, msg string) {
	httpauth.WriteJSON(w, http.StatusNotFound, entities.NewErrorDetail("not_found", msg))
}

func (a *api) listProviders(w http.ResponseWriter, _ *http.Request) {
	providers, saml := []string{}, []string{}
	if a.OAuth != nil {
		providers = a.OAuth.Providers()
	}
	if a.SAML != nil {
		saml = a.SAML.Providers()
	}
	httpauth.WriteJSON(w, http.StatusOK, map[string][]string{"providers": providers, "saml": saml})
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	if a.OAuth == nil {
		notFound(w, "no identity providers configured")
		return
	}
	url, _, err := a.OAuth.AuthCodeURL(chi.URLParam(r, "provider"))
	if err != nil {
		if stdErrors.Is(err, identity.ErrUnknownProvider) {
			notFound(w, err.Error())
			return
		}
		httpauth.WriteError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (a *api) callback(w http.ResponseWriter, r *http.Request) {
	if a.OAuth == nil {
		notFound(w, "no identity providers configured")
		return
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		badRequest(w, "identity provider returned error: "+e)
		return
	}
	user, err := a.OAuth.HandleCallback(r.Context(), chi.URLParam(r, "provider"), q.Get("state"), q.Get("code"))
	switch {
	case stdErrors.Is(err, identity.ErrUnknownProvider):
		notFound(w, err.Error())
		return
	case stdErrors.Is(err, identity.ErrInvalidState), stdErrors.Is(err, identity.ErrMissingEmail):
		badRequest(w, err.Error())
		return
	case err != nil:
		a.Logger.ErrorContext(r.Context(), "oauth callback failed", slog.Any("error", err))
		httpauth.WriteError(w, err)
		return
	}
	a.startSession(w, user)
}

type assertionRequest struct {
	Assertion string `json:"assertion"`
}

// samlAssertion accepts a bridge token as JSON {"assertion": ...} or as the
// form field "assertion".
func (a *api) samlAssertion(w http.ResponseWriter, r *http.Request) {
	if a.SAML == nil || a.Assertions == nil {
		notFound(w, "no saml providers configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req assertionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body: "+err.Error())
			return
		}
		raw = req.Assertion
	} else {
		raw = r.PostFormValue("assertion")
	}
	if raw == "" {
		badRequest(w, "assertion is required")
		return
	}

	provider := chi.URLParam(r, "provider")
	assertion, err := a.Assertions.Verify(r.Context(), provider, raw)
	if err != nil {
		a.Logger.WarnContext(r.Context(), "rejected saml assertion",
			slog.String("provider", provider), slog.Any("error", err))
		httpauth.WriteError(w, &errors.UnauthorizedError{Message: "invalid saml assertion"})
		return
	}

	user, err := a.SAML.HandleAssertion(r.Context(), provider, *assertion)
	switch {
	case stdErrors.Is(err, identity.ErrUnknownProvider):
		notFound(w, err.Error())
		return
	case stdErrors.Is(err, identity.ErrMissingEmail):
		badRequest(w, err.Error())
		return
	case err != nil:
		a.Logger.ErrorContext(r.Context(), "saml login failed", slog.Any("error", err))
		httpauth.WriteError(w, err)
		return
	}
	a.startSession(w, user)
}

func (a *api) startSession(w http.ResponseWriter, user *rbac.UserWithRole) {
	token, err := a.Sessions.Issue(user)
	if err != nil {
		httpauth.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpauth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	httpauth.WriteJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	user, _ := httpauth.UserFromContext(r.Context())
	httpauth.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"permissions": rbac.RolePermissions(user.Role),
	})
}

func (a *api) roles(w http.ResponseWriter, _ *http.Request) {
	out := make(map[rbac.Role][]rbac.Permission, len(rbac.Roles()))
	for _, role := range rbac.Roles() {
		perms, err := a.Enforcer.Policy(role)
		if err != nil {
			httpauth.WriteError(w, err)
			return
		}
		out[role] = perms
	}
	httpauth.WriteJSON(w, http.StatusOK, out)
}

func (a *api) listSkills(w http.ResponseWriter, _ *http.Request) {
	httpauth.WriteJSON(w, http.StatusOK, map[string][]string{"skills": a.Registry.Skills()})
}

func (a *api) installSkill(w http.ResponseWriter, r *http.Request) {
	var manifest entities.SkillManifest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&manifest); err != nil {
		badRequest(w, "invalid manifest: "+err.Error())
		return
	}
	result, err := a.validator.Validate(&manifest)
	if err != nil {
		httpauth.WriteError(w, err)
		return
	}
	if !result.Valid {
		httpauth.WriteJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	if err := a.Approver.Review(&manifest); err != nil {
		httpauth.WriteError(w, err)
		return
	}
	if err := a.Registry.Install(&manifest); err != nil {
		httpauth.WriteError(w, err)
		return
	}
	httpauth.WriteJSON(w, http.StatusCreated, map[string]any{
		"name":     manifest.Name,
		"risk":     entities.NewRiskAssessor().AssessSet(manifest.PermissionSet()).String(),
		"warnings": result.Warnings,
	})
}

func (a *api) uninstallSkill(w http.ResponseWriter, r *http.Request) {
	if !a.Registry.Uninstall(chi.URLParam(r, "name")) {
		notFound(w, "skill not installed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkRequest struct {
	Request string `json:"request" validate:"required"`
}

func (a *api) checkSkill(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(w, "request is required")
		return
	}

	name := chi.URLParam(r, "name")
	if _, ok := a.Registry.Checker(name); !ok {
		notFound(w, "skill not installed")
		return
	}
	result, err := a.Registry.Evaluate(r.Context(), name, req.Request)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	httpauth.WriteJSON(w, http.StatusOK, result)
}

// Package validation checks skill manifests before installation using
// go-playground/validator struct tags plus the permission grammar.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
)

var skillNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// validate is a package-level singleton; building a validator is expensive.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(fld.Tag.Get("yaml"), ",")
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("skillname", func(fl validator.FieldLevel) bool {
		return skillNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("skillperm", func(fl validator.FieldLevel) bool {
		return entities.IsValidPermission(fl.Field().String())
	})
	return v
}

// Struct validates any struct carrying validate tags, including the custom
// skillname and skillperm tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// ManifestValidator implements ports.ManifestValidator.
type ManifestValidator struct{}

// NewManifestValidator creates a new validator.
func NewManifestValidator() ports.ManifestValidator {
	return &ManifestValidator{}
}

// Validate reports structural errors (missing name, bad version, malformed
// permissions) as Errors and permissions that need user approval or are
// declared twice as Warnings.
func (v *ManifestValidator) Validate(manifest *entities.SkillManifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	result := &entities.ValidationResult{Valid: true}

	if err := validate.Struct(manifest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("failed to validate manifest: %w", err)
		}
		for _, fe := range verrs {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
	}

	seen := make(map[string]bool, len(manifest.Permissions))
	for i, p := range manifest.Permissions {
		field := fmt.Sprintf("permissions[%d]", i)
		if seen[p] {
			result.Warnings = append(result.Warnings, entities.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("permission %q is declared more than once", p),
			})
			continue
		}
		seen[p] = true
		if entities.RequiresApproval(p) {
			result.Warnings = append(result.Warnings, entities.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s requires user approval: %s", p, entities.DescribePermission(p)),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func message(fe validator.FieldError) string {
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "skillname":
		return fmt.Sprintf("name %q must be lowercase letters, digits and single dashes", value)
	case "semver":
		return fmt.Sprintf("version %q is not a semantic version", value)
	case "skillperm":
		return permissionMessage(value)
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

func permissionMessage(permission string) string {
	parsed, err := entities.ParsePermission(permission)
	switch {
	case err != nil:
		return err.Error()
	case !parsed.Category.IsKnown():
		return fmt.Sprintf("unknown permission category %q in %q", parsed.Category, permission)
	default:
		return fmt.Sprintf("permission %q has an empty resource", permission)
	}
}

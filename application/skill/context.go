package skill

import "context"

type skillContextKey struct {
	name string
}

var skillNameContextKey = &skillContextKey{name: "skill_name"}

// WithSkillName adds the calling skill's name to the context.
func WithSkillName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, skillNameContextKey, name)
}

// SkillNameFromContext retrieves the calling skill's name from the context.
func SkillNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(skillNameContextKey).(string)
	return name, ok && name != ""
}

// Package skill manages installed skills at runtime: one immutable
// permission checker per skill, guards that turn denied checks into
// errors, and the approval workflow for dangerous permissions.
package skill

package permissions

import (
	"context"
	"errors"
	"strings"
)

// Capabilities checked by the admin endpoints.
const (
	ManageOptions = "manage_options"
	EditForms     = "edit_forms"
)

const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
)

var roleCapabilities = map[string][]string{
	RoleAdministrator: {ManageOptions, EditForms},
	RoleEditor:        {EditForms},
}

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Capability string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Capability) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Capability
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

type Checker interface {
	Allowed(capability string) bool
}

type CheckerFunc func(capability string) bool

func (fn CheckerFunc) Allowed(capability string) bool {
	return fn(capability)
}

// Set is a static capability set. "*" grants everything.
type Set map[string]struct{}

func NewSet(caps ...string) Set {
	set := Set{}
	for _, capability := range caps {
		if normalized := normalize(capability); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// ForRoles expands role names into their capabilities. Unknown roles are
// treated as capability names so tokens may carry either.
func ForRoles(roles ...string) Set {
	set := Set{}
	for _, role := range roles {
		role = normalize(role)
		if role == "" {
			continue
		}
		caps, ok := roleCapabilities[role]
		if !ok {
			set[role] = struct{}{}
			continue
		}
		for _, capability := range caps {
			set[capability] = struct{}{}
		}
	}
	return set
}

func (s Set) Allowed(capability string) bool {
	normalized := normalize(capability)
	if len(s) == 0 || normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	_, ok := s["*"]
	return ok
}

type contextKey string

const checkerKey contextKey = "formbridge.permissions.checker"

// WithChecker stores the current user's checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithCapabilities stores a static capability set on the context.
func WithCapabilities(ctx context.Context, caps ...string) context.Context {
	if ctx == nil || len(caps) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(caps...))
}

func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey).(Checker)
	return checker
}

// Can reports whether the current user holds capability. Requests without a
// checker are anonymous and hold nothing.
func Can(ctx context.Context, capability string) bool {
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return false
	}
	return checker.Allowed(normalize(capability))
}

// Require is Can returning an Error.
func Require(ctx context.Context, capability string) error {
	if Can(ctx, capability) {
		return nil
	}
	return Error{Capability: normalize(capability)}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

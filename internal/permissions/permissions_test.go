package permissions

import (
	"context"
	"errors"
	"testing"
)

func TestCanDeniesAnonymousContext(t *testing.T) {
	if Can(context.Background(), ManageOptions) {
		t.Fatal("anonymous requests must not hold capabilities")
	}
	err := Require(context.Background(), ManageOptions)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestForRolesExpandsCapabilities(t *testing.T) {
	admin := WithChecker(context.Background(), ForRoles("Administrator"))
	if !Can(admin, ManageOptions) || !Can(admin, EditForms) {
		t.Fatal("administrator should manage options and edit forms")
	}

	editor := WithChecker(context.Background(), ForRoles(RoleEditor))
	if Can(editor, ManageOptions) {
		t.Fatal("editor must not manage options")
	}
	if !Can(editor, " EDIT_FORMS ") {
		t.Fatal("capability names should be normalised")
	}

	custom := WithChecker(context.Background(), ForRoles("manage_options"))
	if !Can(custom, ManageOptions) {
		t.Fatal("unknown roles are kept as capabilities")
	}
}

func TestWildcardSet(t *testing.T) {
	ctx := WithCapabilities(context.Background(), "*")
	if !Can(ctx, "anything") {
		t.Fatal("wildcard should grant every capability")
	}
}

func TestCheckerFunc(t *testing.T) {
	ctx := WithChecker(context.Background(), CheckerFunc(func(capability string) bool {
		return capability == ManageOptions
	}))
	if err := Require(ctx, "Manage_Options"); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	var permErr Error
	if err := Require(ctx, EditForms); !errors.As(err, &permErr) || permErr.Capability != EditForms {
		t.Fatalf("expected permissions.Error for edit_forms, got %v", err)
	}
}

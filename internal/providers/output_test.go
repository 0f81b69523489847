package providers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/providers"
)

func TestOutputConnectionRequiresConnectionAndForm(t *testing.T) {
	f := newFixture(t, defaultStub())
	ctx := context.Background()

	if got := f.provider.OutputConnection(ctx, "connection_a", forms.Connection{}, sampleForm()); got != "" {
		t.Fatalf("expected empty output for empty connection, got %q", got)
	}
	if got := f.provider.OutputConnection(ctx, "connection_a", forms.Connection{Name: "Main"}, nil); got != "" {
		t.Fatalf("expected empty output without form, got %q", got)
	}
}

func TestOutputConnectionRendersEveryBlock(t *testing.T) {
	f := newFixture(t, defaultStub())
	f.addAccount(t, "acc1", "Main Account")

	conn := forms.Connection{
		Name:      "Newsletter signup",
		AccountID: "acc1",
		ListID:    "l1",
		Groups:    map[string][]string{"gs1": {"VIP"}},
		Fields:    map[string]string{"EMAIL": "2.value.email"},
	}
	html := f.provider.OutputConnection(context.Background(), "connection_abc", conn, sampleForm())

	expected := []string{
		`<div class="wpforms-provider-connection" data-provider="restlist" data-connection_id="connection_abc">`,
		`<span>Newsletter signup</span>`,
		`name="providers[restlist][connection_abc][connection_name]"`,
		`<option value="acc1" selected="selected">Main Account</option><option value="">Add New Account</option>`,
		`<option value="l1" selected="selected">Newsletter</option><option value="l2">Customers</option>`,
		`<input id="group_g1" type="checkbox" value="VIP" name="providers[restlist][connection_abc][groups][gs1][g1]" checked="checked">`,
		`<input id="group_g2" type="checkbox" value="Beta" name="providers[restlist][connection_abc][groups][gs1][g2]">`,
		`Email Address<span class="required">*</span>`,
		`<option value="2.value.email" selected="selected">Email</option>`,
		`<option value="1.first.text">Name (First)</option>`,
		`wpforms-conditional-block`,
		`<div class="stub-options" data-connection="connection_abc"></div>`,
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Fatalf("expected output to contain %q\n%s", want, html)
		}
	}
	fieldsBlock := html[strings.Index(html, "wpforms-provider-fields"):strings.Index(html, "wpforms-conditional-block")]
	if strings.Contains(fieldsBlock, "Attachment") {
		t.Fatalf("file upload fields must not be offered for mapping")
	}

	order := []string{"wpforms-provider-connection-header", "wpforms-provider-accounts", "wpforms-provider-lists", "wpforms-provider-groups", "wpforms-provider-fields", "wpforms-conditional-block", "stub-options"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(html, marker)
		if idx <= last {
			t.Fatalf("block %q out of order", marker)
		}
		last = idx
	}
}

func TestOutputConnectionGeneratesID(t *testing.T) {
	f := newFixture(t, defaultStub())
	html := f.provider.OutputConnection(context.Background(), "", forms.Connection{Name: "New"}, sampleForm())
	if !strings.Contains(html, `data-connection_id="connection_fixed"`) {
		t.Fatalf("expected generated connection id, got %s", html)
	}
}

func TestOutputConnectionSkipsFailingLists(t *testing.T) {
	api := defaultStub()
	api.listsErr = providers.NewError("restlist", "API key revoked")
	f := newFixture(t, api)
	f.addAccount(t, "acc1", "Main Account")

	conn := forms.Connection{Name: "Main", AccountID: "acc1"}
	if _, err := f.provider.OutputLists(context.Background(), "connection_abc", conn); !providers.IsError(err) {
		t.Fatalf("expected provider error, got %v", err)
	}

	html := f.provider.OutputConnection(context.Background(), "connection_abc", conn, sampleForm())
	if strings.Contains(html, "wpforms-provider-lists") {
		t.Fatalf("lists block should be omitted on error")
	}
	if !strings.Contains(html, "wpforms-provider-accounts") {
		t.Fatalf("accounts block should still render")
	}
}

func TestOutputBlocksRequireInputs(t *testing.T) {
	f := newFixture(t, defaultStub())
	ctx := context.Background()

	if got := f.provider.OutputAccounts(ctx, "connection_a", forms.Connection{Name: "x"}); got != "" {
		t.Fatalf("expected no accounts block without connected accounts, got %q", got)
	}
	if got, err := f.provider.OutputLists(ctx, "connection_a", forms.Connection{}); got != "" || err != nil {
		t.Fatalf("expected no lists without account, got %q %v", got, err)
	}
	if got := f.provider.OutputGroups(ctx, "connection_a", forms.Connection{AccountID: "a"}); got != "" {
		t.Fatalf("expected no groups without list, got %q", got)
	}
	if got, err := f.provider.OutputFields(ctx, "connection_a", forms.Connection{AccountID: "a", ListID: "l"}, nil); got != "" || err != nil {
		t.Fatalf("expected no fields without form, got %q %v", got, err)
	}
	if got := f.provider.OutputConditionals("connection_a", forms.Connection{}, sampleForm()); got != "" {
		t.Fatalf("expected no conditionals without account, got %q", got)
	}
}

func TestOutputGroupsHidesErrors(t *testing.T) {
	api := defaultStub()
	api.groupsErr = providers.NewError("restlist", "no segments")
	f := newFixture(t, api)

	got := f.provider.OutputGroups(context.Background(), "connection_a", forms.Connection{AccountID: "a", ListID: "l1"})
	if got != "" {
		t.Fatalf("expected empty groups on error, got %q", got)
	}
}

func TestOutputFieldsReturnsAPIError(t *testing.T) {
	api := defaultStub()
	api.fieldsErr = providers.NewError("restlist", "list not found")
	f := newFixture(t, api)

	_, err := f.provider.OutputFields(context.Background(), "connection_a", forms.Connection{AccountID: "a", ListID: "l1"}, sampleForm())
	if providers.ErrorMessage(err) != "list not found" {
		t.Fatalf("expected list not found, got %v", err)
	}
}

func TestOutputNewConnection(t *testing.T) {
	f := newFixture(t, defaultStub())
	if got := f.provider.OutputNewConnection(context.Background(), "", nil); got != "" {
		t.Fatalf("expected nothing without a form, got %q", got)
	}
	html := f.provider.OutputNewConnection(context.Background(), "", sampleForm())
	if !strings.Contains(html, "<span></span>") || !strings.Contains(html, "[connection_fixed][connection_name]") {
		t.Fatalf("expected a blank named connection block, got %q", html)
	}
}

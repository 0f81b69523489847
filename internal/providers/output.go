package providers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/conditionals"
	"github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("providers").ParseFS(templateFS, "templates/*.html"))

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type blockView struct {
	Slug    string
	ID      string
	Name    string
	Options []selectOption
}

type groupView struct {
	ID       string
	Name     string
	Selected bool
}

type groupSetView struct {
	ID     string
	Name   string
	Groups []groupView
}

type groupsView struct {
	Slug string
	ID   string
	Sets []groupSetView
}

type fieldRowView struct {
	Name     string
	Tag      string
	Required bool
	Options  []selectOption
}

type fieldsView struct {
	Slug string
	ID   string
	Rows []fieldRowView
}

type connectionView struct {
	Slug string
	ID   string
	Body template.HTML
}

func (p *Provider) render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		p.logger.Error("providers.render_failed", "template", name, "error", err)
		return ""
	}
	return buf.String()
}

// OutputConnection renders a complete connection block. A blank id is
// replaced with a fresh connection id. Nothing is rendered for an empty
// connection or a missing form.
func (p *Provider) OutputConnection(ctx context.Context, connectionID string, conn forms.Connection, form *forms.Form) string {
	if conn.IsZero() || form == nil {
		return ""
	}
	return p.renderConnection(ctx, connectionID, conn, form)
}

// OutputNewConnection renders the block for a connection just added in the
// builder. The name may be blank; only a missing form renders nothing.
func (p *Provider) OutputNewConnection(ctx context.Context, name string, form *forms.Form) string {
	if form == nil {
		return ""
	}
	return p.renderConnection(ctx, "", forms.Connection{Name: name}, form)
}

func (p *Provider) renderConnection(ctx context.Context, connectionID string, conn forms.Connection, form *forms.Form) string {
	if strings.TrimSpace(connectionID) == "" {
		connectionID = p.newID()
	}

	var body strings.Builder
	body.WriteString(p.connectionHeader(connectionID, conn))
	body.WriteString(p.OutputAuth(ctx))
	body.WriteString(p.accountsSelect(ctx, connectionID, conn))
	if lists, err := p.OutputLists(ctx, connectionID, conn); err == nil {
		body.WriteString(lists)
	}
	body.WriteString(p.OutputGroups(ctx, connectionID, conn))
	if fields, err := p.OutputFields(ctx, connectionID, conn, form); err == nil {
		body.WriteString(fields)
	}
	body.WriteString(p.OutputConditionals(connectionID, conn, form))
	body.WriteString(p.OutputOptions(ctx, connectionID, conn))

	return p.render("connection", connectionView{
		Slug: p.info.Slug,
		ID:   connectionID,
		Body: template.HTML(body.String()),
	})
}

// OutputConnectionHeader renders the connection title bar.
func (p *Provider) OutputConnectionHeader(connectionID string, conn forms.Connection) string {
	if conn.IsZero() {
		return ""
	}
	return p.connectionHeader(connectionID, conn)
}

func (p *Provider) connectionHeader(connectionID string, conn forms.Connection) string {
	if connectionID == "" {
		return ""
	}
	return p.render("connection_header", blockView{
		Slug: p.info.Slug,
		ID:   connectionID,
		Name: strings.TrimSpace(conn.Name),
	})
}

// OutputAuth renders the integration's credential inputs, if it has any.
func (p *Provider) OutputAuth(ctx context.Context) string {
	if renderer, ok := p.api.(providers.AuthFormRenderer); ok {
		return renderer.OutputAuth(ctx)
	}
	return ""
}

// OutputAccounts renders the account select from the options record.
func (p *Provider) OutputAccounts(ctx context.Context, connectionID string, conn forms.Connection) string {
	if conn.IsZero() {
		return ""
	}
	return p.accountsSelect(ctx, connectionID, conn)
}

func (p *Provider) accountsSelect(ctx context.Context, connectionID string, conn forms.Connection) string {
	if connectionID == "" {
		return ""
	}
	accounts, err := p.settings.Accounts(ctx, p.info.Slug)
	if err != nil {
		p.logger.Error("providers.accounts_load_failed", "error", err)
		return ""
	}
	if len(accounts) == 0 {
		return ""
	}

	view := blockView{Slug: p.info.Slug, ID: connectionID}
	for _, account := range accounts {
		view.Options = append(view.Options, selectOption{
			Value:    account.Key,
			Label:    account.Label,
			Selected: conn.AccountID != "" && conn.AccountID == account.Key,
		})
	}
	return p.render("accounts", view)
}

// OutputLists renders the list select for the connection's account. API
// failures are returned so AJAX callers can surface them.
func (p *Provider) OutputLists(ctx context.Context, connectionID string, conn forms.Connection) (string, error) {
	if connectionID == "" || conn.AccountID == "" {
		return "", nil
	}
	lists, err := p.api.Lists(ctx, connectionID, conn.AccountID)
	if err != nil {
		return "", providers.WrapError(p.info.Slug, err)
	}

	view := blockView{Slug: p.info.Slug, ID: connectionID}
	for _, list := range lists {
		view.Options = append(view.Options, selectOption{
			Value:    list.ID,
			Label:    list.Name,
			Selected: conn.ListID != "" && conn.ListID == list.ID,
		})
	}
	return p.render("lists", view), nil
}

// OutputGroups renders the optional segment checkboxes. API failures render
// nothing.
func (p *Provider) OutputGroups(ctx context.Context, connectionID string, conn forms.Connection) string {
	if connectionID == "" || conn.AccountID == "" || conn.ListID == "" {
		return ""
	}
	sets, err := p.api.Groups(ctx, connectionID, conn.AccountID, conn.ListID)
	if err != nil {
		p.logger.Debug("providers.groups_unavailable", "connection_id", connectionID, "error", err)
		return ""
	}

	view := groupsView{Slug: p.info.Slug, ID: connectionID}
	for _, set := range sets {
		sv := groupSetView{ID: set.ID, Name: set.Name}
		for _, group := range set.Groups {
			sv.Groups = append(sv.Groups, groupView{
				ID:       group.ID,
				Name:     group.Name,
				Selected: conn.GroupSelected(set.ID, group.Name),
			})
		}
		view.Sets = append(view.Sets, sv)
	}
	return p.render("groups", view)
}

// OutputFields renders the provider field to form field mapping table.
func (p *Provider) OutputFields(ctx context.Context, connectionID string, conn forms.Connection, form *forms.Form) (string, error) {
	if connectionID == "" || conn.AccountID == "" || conn.ListID == "" || form == nil {
		return "", nil
	}
	providerFields, err := p.api.Fields(ctx, connectionID, conn.AccountID, conn.ListID)
	if err != nil {
		return "", providers.WrapError(p.info.Slug, err)
	}
	formFields, _ := formstore.FormFields(form, p.fieldTypes)

	view := fieldsView{Slug: p.info.Slug, ID: connectionID}
	for _, field := range providerFields {
		row := fieldRowView{Name: field.Name, Tag: field.Tag, Required: field.Required}
		current := conn.Fields[field.Tag]
		for _, option := range formstore.FormFieldSelect(formFields, field.FieldType) {
			value := option.Value()
			row.Options = append(row.Options, selectOption{
				Value:    value,
				Label:    option.Label,
				Selected: current != "" && current == value,
			})
		}
		view.Rows = append(view.Rows, row)
	}
	return p.render("fields", view), nil
}

// OutputConditionals renders the conditional logic block once an account is
// selected.
func (p *Provider) OutputConditionals(connectionID string, conn forms.Connection, form *forms.Form) string {
	if conn.AccountID == "" {
		return ""
	}
	html, err := conditionals.Render(conditionals.Block{
		Form:       form,
		Parent:     "providers",
		Panel:      p.info.Slug,
		Subsection: connectionID,
		Actions: []conditionals.Action{
			{Value: "go", Label: "Process"},
			{Value: "stop", Label: "Don't process"},
		},
		ActionDesc: "this connection if",
		Reference:  "Marketing provider connection",
		Enabled:    conn.ConditionalLogic,
		Type:       conn.ConditionalType,
		Groups:     conn.Conditionals,
	})
	if err != nil {
		p.logger.Error("providers.render_failed", "template", "conditionals", "error", err)
		return ""
	}
	return html
}

// OutputOptions renders integration specific options, if any.
func (p *Provider) OutputOptions(ctx context.Context, connectionID string, conn forms.Connection) string {
	if renderer, ok := p.api.(providers.OptionsRenderer); ok {
		return renderer.OutputOptions(ctx, connectionID, conn)
	}
	return ""
}

package restlist

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

type subscribeRequest struct {
	Email       string              `json:"email"`
	Fields      map[string]string   `json:"fields,omitempty"`
	Groups      map[string][]string `json:"groups,omitempty"`
	DoubleOptIn bool                `json:"double_optin"`
	Source      string              `json:"source,omitempty"`
}

// ProcessConnection subscribes the submission's email address to the
// connection's list with the mapped merge fields and selected groups.
func (a *API) ProcessConnection(ctx context.Context, sub forms.Submission, connectionID string, conn forms.Connection) error {
	creds, err := a.credentials(ctx, conn.AccountID)
	if err != nil {
		return err
	}

	payload := subscribeRequest{
		Fields:      map[string]string{},
		DoubleOptIn: optionEnabled(conn.Options, OptionDoubleOptIn),
		Source:      connectionID,
	}
	tags := make([]string, 0, len(conn.Fields))
	for tag := range conn.Fields {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		value := mappedValue(sub, conn.Fields[tag])
		if value == "" {
			continue
		}
		if tag == emailField.Tag {
			payload.Email = value
			continue
		}
		payload.Fields[tag] = value
	}
	if payload.Email == "" {
		return providers.NewError(a.slug, "Entry has no email address for this connection")
	}
	if len(conn.Groups) > 0 {
		payload.Groups = conn.Groups
	}

	path := "/lists/" + url.PathEscape(conn.ListID) + "/subscribers"
	if err := a.call(ctx, creds, http.MethodPost, path, payload, nil); err != nil {
		return err
	}
	a.logger.WithContext(ctx).Info("restlist.subscribed", "provider", a.slug, "connection_id", connectionID, "list_id", conn.ListID)
	return nil
}

// mappedValue resolves a "<field id>.<key>.<type>" mapping against the
// submitted fields.
func mappedValue(sub forms.Submission, mapping string) string {
	id, key, _, ok := formstore.ParseFieldValue(mapping)
	if !ok {
		return ""
	}
	field, ok := sub.Fields[id]
	if !ok {
		return ""
	}
	return strings.TrimSpace(field.Part(key))
}

package restlist

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("restlist").ParseFS(templateFS, "templates/*.html"))

// OptionDoubleOptIn is the connection option asking the service to send a
// confirmation email before subscribing.
const OptionDoubleOptIn = "doubleoptin"

type optionsView struct {
	Slug        string
	ID          string
	DoubleOptIn bool
}

// OutputOptions renders the double opt-in toggle once a list is selected.
func (a *API) OutputOptions(ctx context.Context, connectionID string, conn forms.Connection) string {
	if connectionID == "" || conn.AccountID == "" || conn.ListID == "" {
		return ""
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "options", optionsView{
		Slug:        a.slug,
		ID:          connectionID,
		DoubleOptIn: optionEnabled(conn.Options, OptionDoubleOptIn),
	})
	if err != nil {
		a.logger.WithContext(ctx).Error("restlist.render_failed", "provider", a.slug, "error", err)
		return ""
	}
	return buf.String()
}

func optionEnabled(options map[string]any, key string) bool {
	switch v := options[key].(type) {
	case bool:
		return v
	case string:
		v = strings.TrimSpace(v)
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "on")
	case float64:
		return v != 0
	case int:
		return v != 0
	case nil:
		return false
	default:
		return fmt.Sprint(v) == "1"
	}
}

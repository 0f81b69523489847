package forms

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Form is a stored form definition: its fields plus per-provider connection
// metadata captured by the builder.
type Form struct {
	bun.BaseModel `bun:"table:forms,alias:f"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Title     string         `bun:"title,notnull" json:"title"`
	Fields    []Field        `bun:"fields,type:jsonb" json:"fields,omitempty"`
	Providers Providers      `bun:"providers,type:jsonb" json:"providers,omitempty"`
	Settings  map[string]any `bun:"settings,type:jsonb" json:"settings,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Field describes a single form field as saved by the builder.
type Field struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Format   string `json:"format,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// FieldByID returns the field with the given id.
func (f *Form) FieldByID(id int) (Field, bool) {
	if f == nil {
		return Field{}, false
	}
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Providers maps provider slug to connection id to connection.
type Providers map[string]map[string]Connection

// Connections returns the connections stored for a provider slug.
func (p Providers) Connections(slug string) map[string]Connection {
	if p == nil {
		return nil
	}
	return p[slug]
}

// Configured reports whether at least one connection exists for slug.
func (p Providers) Configured(slug string) bool {
	return len(p.Connections(slug)) > 0
}

// ConnectionIDs returns the connection ids for slug in a stable order.
func (p Providers) ConnectionIDs(slug string) []string {
	conns := p.Connections(slug)
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Connection links a form to a provider account, list and field mapping.
type Connection struct {
	Name             string              `json:"connection_name,omitempty"`
	AccountID        string              `json:"account_id,omitempty"`
	ListID           string              `json:"list_id,omitempty"`
	Groups           map[string][]string `json:"groups,omitempty"`
	Fields           map[string]string   `json:"fields,omitempty"`
	ConditionalLogic bool                `json:"conditional_logic,omitempty"`
	ConditionalType  string              `json:"conditional_type,omitempty"`
	Conditionals     ConditionalGroups   `json:"conditionals,omitempty"`
	Options          map[string]any      `json:"options,omitempty"`
}

// IsZero reports whether the connection carries no data at all.
func (c Connection) IsZero() bool {
	return strings.TrimSpace(c.Name) == "" &&
		c.AccountID == "" &&
		c.ListID == "" &&
		len(c.Groups) == 0 &&
		len(c.Fields) == 0 &&
		!c.ConditionalLogic &&
		len(c.Conditionals) == 0 &&
		len(c.Options) == 0
}

// GroupSelected reports whether groupName is selected within groupsetID.
func (c Connection) GroupSelected(groupsetID, groupName string) bool {
	for _, name := range c.Groups[groupsetID] {
		if name == groupName {
			return true
		}
	}
	return false
}

// ConditionalRule compares a submitted field value against a constant.
type ConditionalRule struct {
	Field    int    `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

// ConditionalGroups is a disjunction of rule conjunctions.
type ConditionalGroups [][]ConditionalRule

// EntryField is a processed field value from a submission.
type EntryField struct {
	ID     int    `json:"id"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
}

// Part returns the value stored under key (value, first, middle, last).
func (e EntryField) Part(key string) string {
	switch key {
	case "first":
		return e.First
	case "middle":
		return e.Middle
	case "last":
		return e.Last
	default:
		return e.Value
	}
}

// Submission bundles a completed form submission.
type Submission struct {
	Form    *Form
	Fields  map[int]EntryField
	Entry   map[string]any
	EntryID string
}

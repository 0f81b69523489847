package conditionals

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/goliatone/go-formbridge/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

var blockTemplate = template.Must(template.New("block.html").ParseFS(templateFS, "templates/block.html"))

// Action is one choice of the "process / don't process" select.
type Action struct {
	Value string
	Label string
}

// Block configures the builder conditional logic block for a panel
// subsection, for example one provider connection.
type Block struct {
	Form       *forms.Form
	Parent     string
	Panel      string
	Subsection string
	Actions    []Action
	ActionDesc string
	Reference  string

	Enabled bool
	Type    string
	Groups  forms.ConditionalGroups
}

type blockRule struct {
	Index int
	Rule  forms.ConditionalRule
}

type blockGroup struct {
	Index int
	Rules []blockRule
}

type blockView struct {
	Block
	Prefix    string
	Fields    []forms.Field
	Operators []Operator
	Groups    []blockGroup
}

// Render returns the block HTML.
func Render(b Block) (string, error) {
	view := blockView{
		Block:     b,
		Prefix:    fmt.Sprintf("%s[%s][%s]", b.Parent, b.Panel, b.Subsection),
		Operators: Operators(),
	}
	if b.Form != nil {
		view.Fields = b.Form.Fields
	}

	groups := b.Groups
	if len(groups) == 0 {
		groups = forms.ConditionalGroups{{{}}}
	}
	for gi, group := range groups {
		bg := blockGroup{Index: gi}
		if len(group) == 0 {
			group = []forms.ConditionalRule{{}}
		}
		for ri, rule := range group {
			bg.Rules = append(bg.Rules, blockRule{Index: ri, Rule: rule})
		}
		view.Groups = append(view.Groups, bg)
	}

	var buf bytes.Buffer
	if err := blockTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

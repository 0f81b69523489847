package providers

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/nonce"
	"github.com/goliatone/go-formbridge/internal/permissions"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/providers"
)

// Builder AJAX tasks.
const (
	TaskNewConnection = "new_connection"
	TaskNewAccount    = "new_account"
	TaskSelectAccount = "select_account"
	TaskSelectList    = "select_list"
)

// Request carries the posted fields of an AJAX call. User identifies the
// caller for nonce verification.
type Request struct {
	Task         string
	Provider     string
	ID           string
	FormID       string
	Name         string
	ConnectionID string
	AccountID    string
	ListID       string
	Key          string
	Nonce        string
	Data         map[string]string
	User         string
}

// Envelope is the JSON body of an AJAX response.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func success(data any) *Envelope {
	return &Envelope{Success: true, Data: data}
}

func failure(message string) *Envelope {
	return &Envelope{Data: map[string]string{"error": message}}
}

func htmlData(html string) map[string]string {
	return map[string]string{"html": html}
}

// ProcessAjax handles a builder AJAX request. A nil envelope means the task
// was not recognised and nothing should be written. The returned error is
// only set for nonce failures.
func (p *Provider) ProcessAjax(ctx context.Context, req Request) (*Envelope, error) {
	if err := p.verifyNonce(req, nonce.ActionBuilder); err != nil {
		return nil, err
	}
	if err := permissions.Require(ctx, permissions.ManageOptions); err != nil {
		p.logger.Warn("providers.ajax_denied", "task", req.Task, "error", permissionError(err))
		return failure(msgNoPermission), nil
	}

	logger := logging.WithProviderContext(p.logger, "", req.Task, req.ConnectionID)

	switch req.Task {
	case TaskNewConnection:
		form := p.requestForm(ctx, req.ID)
		html := p.OutputNewConnection(ctx, req.Name, form)
		return success(htmlData(html)), nil

	case TaskNewAccount:
		account, err := p.connectAccount(ctx, req.Data, req.ID)
		if err != nil {
			logger.Warn("providers.account_auth_failed", "error", externalError(err))
			return failure(providers.ErrorMessage(err)), nil
		}
		html := p.OutputAccounts(ctx, req.ConnectionID, forms.Connection{AccountID: account.Key})
		return success(htmlData(html)), nil

	case TaskSelectAccount:
		html, err := p.OutputLists(ctx, req.ConnectionID, forms.Connection{AccountID: req.AccountID})
		if err != nil {
			logger.Warn("providers.lists_failed", "error", externalError(err))
			return failure(providers.ErrorMessage(err)), nil
		}
		return success(htmlData(html)), nil

	case TaskSelectList:
		conn := forms.Connection{AccountID: req.AccountID, ListID: req.ListID}
		formID := req.ID
		if strings.TrimSpace(formID) == "" {
			formID = req.FormID
		}
		form := p.requestForm(ctx, formID)
		fields, err := p.OutputFields(ctx, req.ConnectionID, conn, form)
		if err != nil {
			logger.Warn("providers.fields_failed", "error", externalError(err))
			return failure(providers.ErrorMessage(err)), nil
		}
		html := p.OutputGroups(ctx, req.ConnectionID, conn) +
			fields +
			p.OutputConditionals(req.ConnectionID, conn, form) +
			p.OutputOptions(ctx, req.ConnectionID, conn)
		return success(htmlData(html)), nil
	}

	logger.Debug("providers.ajax_unknown_task")
	return nil, nil
}

// SettingsDisconnect removes an account from the options record. Any
// provider may serve it since the target provider comes from the request.
func (p *Provider) SettingsDisconnect(ctx context.Context, req Request) (*Envelope, error) {
	if err := p.verifyNonce(req, nonce.ActionAdmin); err != nil {
		return nil, err
	}
	if err := permissions.Require(ctx, permissions.ManageOptions); err != nil {
		p.logger.Warn("providers.settings_denied", "error", permissionError(err))
		return failure(msgNoPermission), nil
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Provider, validation.Required),
		validation.Field(&req.Key, validation.Required),
	); err != nil {
		return failure(msgMissingData), nil
	}

	if err := p.settings.Remove(ctx, req.Provider, req.Key); err != nil {
		if errors.Is(err, settings.ErrAccountMissing) {
			return failure(msgMissingAccount), nil
		}
		p.logger.Error("providers.disconnect_failed", "target", req.Provider, "error", err)
		return failure(err.Error()), nil
	}
	return success(nil), nil
}

// SettingsAdd connects a new account from the settings tab. Requests for
// another provider are ignored.
func (p *Provider) SettingsAdd(ctx context.Context, req Request) (*Envelope, error) {
	if req.Provider != p.info.Slug {
		return nil, nil
	}
	if err := p.verifyNonce(req, nonce.ActionAdmin); err != nil {
		return nil, err
	}
	if err := permissions.Require(ctx, permissions.ManageOptions); err != nil {
		p.logger.Warn("providers.settings_denied", "error", permissionError(err))
		return failure(msgNoPermission), nil
	}
	if err := validation.Validate(req.Data, validation.Required); err != nil {
		return failure(msgMissingData), nil
	}

	account, err := p.connectAccount(ctx, req.Data, "")
	if err != nil {
		p.logger.Warn("providers.account_auth_failed", "error", externalError(err))
		return &Envelope{Data: map[string]string{
			"error":     msgCouldNotAdd,
			"error_msg": providers.ErrorMessage(err),
		}}, nil
	}
	return success(htmlData(p.accountItem(account))), nil
}

func (p *Provider) verifyNonce(req Request, action string) error {
	if p.nonces == nil {
		return nonceError(errors.New("nonce verifier not configured"))
	}
	if err := p.nonces.Verify(req.Nonce, action, req.User); err != nil {
		return nonceError(err)
	}
	return nil
}

func (p *Provider) requestForm(ctx context.Context, formID string) *forms.Form {
	form, err := p.BuilderFormData(ctx, formID)
	if err != nil {
		p.logger.Debug("providers.form_unavailable", "form_id", formID, "error", err)
		return nil
	}
	return form
}

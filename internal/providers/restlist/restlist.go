// Package restlist talks to mailing-list services that expose a small REST
// API: bearer authentication, lists, interest groups, merge fields and a
// subscribe endpoint. Each manifest with driver "restlist" becomes one
// provider backed by this package.
package restlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/manifest"
	"github.com/goliatone/go-formbridge/internal/providerapi"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
	"github.com/goliatone/go-formbridge/providers"
)

// Driver is the manifest driver served by this package.
const Driver = "restlist"

// Credential keys stored on connected accounts.
const (
	CredentialAPIKey = "api_key"
	CredentialAPIURL = "api_url"
)

var (
	ErrSettingsRequired = errors.New("restlist: settings service is required")
	ErrBaseURLRequired  = errors.New("restlist: api base url is required")
)

type credentials struct {
	baseURL string
	apiKey  string
}

// API implements providers.API for one manifest.
type API struct {
	slug     string
	baseURL  string
	settings *settings.Service
	client   *providerapi.Client
	logger   interfaces.Logger
}

// Config wires an API.
type Config struct {
	Manifest manifest.Manifest
	Settings *settings.Service
	Client   *providerapi.Client
}

type Option func(*API)

func WithLogger(logger interfaces.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns the API for cfg.Manifest. Without a client a default one is
// created for the manifest's slug.
func New(cfg Config, opts ...Option) (*API, error) {
	if cfg.Settings == nil {
		return nil, ErrSettingsRequired
	}
	slug := cfg.Manifest.Info.Slug
	client := cfg.Client
	if client == nil {
		clientCfg := providerapi.DefaultConfig()
		clientCfg.Provider = slug
		client = providerapi.NewClient(clientCfg)
	}
	a := &API{
		slug:     slug,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.Manifest.APIBaseURL), "/"),
		settings: cfg.Settings,
		client:   client,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

type accountResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Auth checks the api key against the account endpoint. The returned
// account keeps the key and the resolved base URL as credentials.
func (a *API) Auth(ctx context.Context, data map[string]string, _ string) (providers.Account, error) {
	creds := credentials{
		baseURL: strings.TrimRight(strings.TrimSpace(data[CredentialAPIURL]), "/"),
		apiKey:  strings.TrimSpace(data[CredentialAPIKey]),
	}
	if creds.baseURL == "" {
		creds.baseURL = a.baseURL
	}
	if creds.apiKey == "" {
		return providers.Account{}, providers.NewError(a.slug, "API key is required")
	}
	if creds.baseURL == "" {
		return providers.Account{}, providers.WrapError(a.slug, ErrBaseURLRequired)
	}

	var resp accountResponse
	if err := a.call(ctx, creds, http.MethodGet, "/account", nil, &resp); err != nil {
		return providers.Account{}, err
	}

	label := strings.TrimSpace(data["label"])
	if label == "" {
		label = strings.TrimSpace(resp.Name)
	}
	return providers.Account{
		Label: label,
		Credentials: map[string]string{
			CredentialAPIKey: creds.apiKey,
			CredentialAPIURL: creds.baseURL,
		},
	}, nil
}

// Connect checks that accountID is still in the options record.
func (a *API) Connect(ctx context.Context, accountID string) error {
	_, err := a.credentials(ctx, accountID)
	return err
}

// credentials reads accountID from the options record on every call, so a
// disconnected account stops working immediately.
func (a *API) credentials(ctx context.Context, accountID string) (credentials, error) {
	account, err := a.settings.Account(ctx, a.slug, accountID)
	if err != nil {
		if errors.Is(err, settings.ErrAccountMissing) {
			return credentials{}, providers.NewError(a.slug, "Account could not be found")
		}
		return credentials{}, providers.WrapError(a.slug, err)
	}
	creds := credentials{
		baseURL: strings.TrimRight(account.Credentials[CredentialAPIURL], "/"),
		apiKey:  account.Credentials[CredentialAPIKey],
	}
	if creds.baseURL == "" {
		creds.baseURL = a.baseURL
	}
	return creds, nil
}

type listsResponse struct {
	Data []struct {
		ID   flexID `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

func (a *API) Lists(ctx context.Context, _ string, accountID string) ([]providers.List, error) {
	creds, err := a.credentials(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var resp listsResponse
	if err := a.call(ctx, creds, http.MethodGet, "/lists", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]providers.List, 0, len(resp.Data))
	for _, item := range resp.Data {
		out = append(out, providers.List{ID: string(item.ID), Name: item.Name})
	}
	return out, nil
}

type groupsResponse struct {
	Data []struct {
		ID     flexID `json:"id"`
		Name   string `json:"name"`
		Groups []struct {
			ID   flexID `json:"id"`
			Name string `json:"name"`
		} `json:"groups"`
	} `json:"data"`
}

// Groups returns the interest groups of a list. Lists without groups, or
// services without the endpoint, yield an empty result.
func (a *API) Groups(ctx context.Context, _ string, accountID, listID string) ([]providers.GroupSet, error) {
	creds, err := a.credentials(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var resp groupsResponse
	if err := a.call(ctx, creds, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/groups", nil, &resp); err != nil {
		var status *providerapi.StatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	out := make([]providers.GroupSet, 0, len(resp.Data))
	for _, set := range resp.Data {
		gs := providers.GroupSet{ID: string(set.ID), Name: set.Name}
		for _, group := range set.Groups {
			gs.Groups = append(gs.Groups, providers.Group{ID: string(group.ID), Name: group.Name})
		}
		out = append(out, gs)
	}
	return out, nil
}

type fieldsResponse struct {
	Data []struct {
		Tag      string `json:"tag"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		Required bool   `json:"required"`
	} `json:"data"`
}

// emailField is always offered first; every subscriber needs an address.
var emailField = providers.Field{Name: "Email", Tag: "EMAIL", FieldType: "email", Required: true}

func (a *API) Fields(ctx context.Context, _ string, accountID, listID string) ([]providers.Field, error) {
	creds, err := a.credentials(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var resp fieldsResponse
	if err := a.call(ctx, creds, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/fields", nil, &resp); err != nil {
		return nil, err
	}
	out := []providers.Field{emailField}
	for _, item := range resp.Data {
		tag := strings.ToUpper(strings.TrimSpace(item.Tag))
		if tag == "" || tag == emailField.Tag {
			continue
		}
		fieldType := strings.TrimSpace(item.Type)
		if fieldType == "" {
			fieldType = "text"
		}
		out = append(out, providers.Field{Name: item.Name, Tag: tag, FieldType: fieldType, Required: item.Required})
	}
	return out, nil
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (a *API) call(ctx context.Context, creds credentials, method, path string, body, out any) error {
	err := a.client.Do(ctx, providerapi.Request{
		Method:  method,
		URL:     creds.baseURL + path,
		Headers: map[string]string{"Authorization": "Bearer " + creds.apiKey},
		Body:    body,
	}, out)
	if err == nil {
		return nil
	}

	var status *providerapi.StatusError
	if !errors.As(err, &status) {
		a.logger.WithContext(ctx).Warn("restlist.request_failed", "provider", a.slug, "path", path, "error", err)
		return a.fail("Could not reach the provider API", err)
	}
	if status.StatusCode == http.StatusUnauthorized || status.StatusCode == http.StatusForbidden {
		return a.fail("Invalid API key", err)
	}
	var decoded errorResponse
	if json.Unmarshal(status.Body, &decoded) == nil {
		if msg := strings.TrimSpace(decoded.Message + " " + decoded.Error); msg != "" {
			return a.fail(msg, err)
		}
	}
	return a.fail(err.Error(), err)
}

func (a *API) fail(message string, cause error) error {
	e := providers.NewError(a.slug, message)
	e.Err = cause
	return e
}

// flexID accepts ids encoded as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

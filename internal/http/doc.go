// Package http serves the provider screens and endpoints.
//
// Admin routes mount under the configured base path (default /wp-admin):
//   - POST /admin-ajax?action=<action>: builder and settings AJAX calls
//   - GET  /builder/{formID}/providers: builder providers panel
//   - POST /builder/{formID}/providers: save the form's provider connections
//   - GET  /settings/integrations: integrations tab
//   - GET  /pagebuilder/modules/{module}: page-builder module modal
//
// Site routes mount at the root:
//   - POST /forms/{formID}/entries: process a completed submission
//   - GET  /healthz and, when enabled, GET /metrics
package http

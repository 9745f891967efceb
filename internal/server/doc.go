// Package server implements the HTTP server and handlers of the CDN. It
// wires the chi router, the middleware chain and the page, download, API
// and health routes on top of the application context, and provides the
// lifecycle helpers used by the binary and by tests.
package server

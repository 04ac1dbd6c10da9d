// Package server exposes generation, sessions and speech over HTTP with
// JSON bodies. Every response carries an X-Request-ID header and every
// request is logged.
package server

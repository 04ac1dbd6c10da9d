// Package app builds the services from a Config and owns their lifetime.
package app

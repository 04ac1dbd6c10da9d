// Package config loads the application configuration from a YAML file,
// SHABDA_ environment variables and an optional .env file, and checks it
// before any service is built.
package config

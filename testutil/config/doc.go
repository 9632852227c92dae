// Package config loads test database configuration from the environment.
package config

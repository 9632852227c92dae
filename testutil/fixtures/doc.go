// Package fixtures builds pending events for tests.
package fixtures

// Package postgreswrapper abstracts over the database adapters for
// integration tests, selected via the ADAPTER_TYPE environment variable.
package postgreswrapper

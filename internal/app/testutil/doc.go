// Package testutil holds in-memory stand-ins for the object store and the job record store,
// shared by the package tests.
package testutil

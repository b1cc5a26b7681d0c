package testutil

import "testing"

// Given, When, and Then stage a scenario test as ordered subtests sharing the
// enclosing fixture. They are plain t.Run wrappers; the prefix is the only
// structure they add.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	stage(t, "Given", desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	stage(t, "When", desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	stage(t, "Then", desc, fn)
}

func stage(t *testing.T, prefix, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(prefix+" "+desc, fn)
}

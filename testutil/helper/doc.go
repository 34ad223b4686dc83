// Package helper provides test helpers and spies shared by the tests of all packages.
//
// The spies implement the h2o observability interfaces (and slog.Handler) and capture every call,
// so tests can assert on emitted logs, metrics and spans without a real backend.
// The run helpers execute a complete simulation into a Journal and parse its output lines.
//
// Import it with a dot import in _test packages:
//
//	. "github.com/AntonStoeckl/h2o-rendezvous-go/testutil/helper" //nolint:revive
package helper

// Package internal contains the core implementation packages for matchscan.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the matchscan CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Root variants, candidates and match records
//   - errors: Typed scan failures and their sentinels
//   - registry: Ordered root registry and the per-run dedup registry
//   - scanner: Extension filter, tree walker, pattern extractor and run controller
//   - events: Run events and the sinks that deliver them
//   - output: Atomic writer for the primary and fragment listings
//   - config: Viper settings and the scan document (YAML or legacy XML)
//   - display: Console rendering of run events
//   - watcher: File system monitoring with debouncing and re-runs
//   - server: HTTP and WebSocket access to runs
//   - logging: Structured logging on log/slog
//   - validation: Host and origin checks
//   - version: Build metadata
//
// # Data Flow
//
// A run moves through the packages in one direction:
//
//   - config resolves the document into typed roots
//   - scanner walks each root in order and extracts fragments per file
//   - registry claims logical names so a name is reported once per run
//   - events carry progress to the console, the failure log or a socket
//   - output writes both listings once the run has completed
//
// The watcher and the server only decide when a run starts and when it is
// cancelled; neither changes what a run produces.
//
// # Concurrency
//
// A scanner.Runner executes one run at a time on the calling goroutine and
// polls its context at every checkpoint. Sinks are invoked synchronously in
// emission order; events.ChannelSink decouples slow consumers without
// reordering.
//
// For detailed documentation, see the individual package documentation.
package internal

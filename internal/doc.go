// Package internal holds the Engine's private machinery.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - metrics: lock-free counters and the navigation latency histogram
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGuard API except through root aliases.
//   - Be imported by any package outside the goGuard module.
package internal

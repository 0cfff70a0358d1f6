// Package tracking coordinates the analytics helpers: color-scheme
// preference tracking with change notification, search events, the
// organization lookup and the init/teardown lifecycle.
//
// A Coordinator is constructed once per session and owns two pieces of
// mutable state: the last emitted theme and the active change
// subscription. Every public method is total: failures are logged and
// reported as a false or empty return, never as a panic or error.
package tracking

// Package workflow orchestrates the reservation lifecycle: provisioning
// issues a temporary admin password at reservation start, teardown
// archives and removes every lab, restores the permanent credentials and
// clears all sessions at reservation end.
//
// A workflow run never returns an error. Every failure is logged where
// it happens and recorded as a tagged entry in the run's trace; a
// non-empty trace is mailed to the operator address at the end. The
// caller's view is always "the run completed".
package workflow

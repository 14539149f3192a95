// Package service launches and supervises external jobs.
//
// A Session holds the ordered JobSpecs of one run. The Supervisor drives it
// through three steps, all from the calling goroutine:
//
//	Supervisor             Session                 Runner{cmd}
//	    |                     |                        |
//	LaunchAll: open log ----->| JobHandle{Running} --->| os/exec Start
//	    |                     | or FailedToLaunch      | reaper goroutine
//	Monitor: sweep ---------->| Poll() each active  <--| exit state
//	    |  sleep interval     | retire exited, close   |
//	    |  repeat             | log, emit Completion   |
//	Summarize --------------->| stat log + artifacts   |
//
// Parallelism comes only from the child processes. Session state is touched
// by one goroutine only, so nothing is locked.
//
// Invariants:
//   - Every spec is attempted exactly once, launch failures do not stop the batch.
//   - Every opened log handle is closed exactly once: on completion, on
//     launch failure, or by Session.Close.
//   - Cancellation stops Monitor but never signals the children; they are
//     reported with their pids instead.
//   - Nothing is retried and no job has a timeout.
//
// Run wires preflight, the work dir lock and the console report around the
// Supervisor and is what the hlsrun command calls.
package service

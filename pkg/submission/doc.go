// Package submission drives one request/response cycle per user-initiated
// form submission: it disables the submit control, posts the form snapshot
// as JSON to the issue endpoint and renders the outcome into a status display.
//
// The controller owns its in-flight state explicitly (StateIdle or
// StateSubmitting). A second submission attempted while one is in flight is
// rejected with ErrSubmissionInFlight instead of being queued.
package submission

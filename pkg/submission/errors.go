package submission

import "errors"

var (
	// ErrSubmissionInFlight is returned when Submit is called while a previous
	// submission has not settled yet.
	ErrSubmissionInFlight = errors.New("submission: a submission is already in flight")
	// ErrMalformedResponse marks backend responses whose body is not JSON.
	ErrMalformedResponse = errors.New("submission: response body is not valid JSON")
	// ErrNilDisplay and ErrNilControl guard controller construction.
	ErrNilDisplay = errors.New("submission: display is required")
	ErrNilControl = errors.New("submission: control is required")
)

package myfitnesspal

import "fmt"

var LoginFailed = fmt.Errorf("could not access your account with the provided cookies or credentials")

// the site renders these conditions as normal diary pages with an
// explanatory blurb, so they are detected by phrase matching and
// surfaced as real errors instead of empty diaries.
var DiaryLocked = fmt.Errorf("diary is locked with a key")
var DiaryPrivate = fmt.Errorf("this user maintains a private diary")

// RequestFailedError reports a non-2xx response on a fetch the
// extractor cannot proceed without.
type RequestFailedError struct {
	StatusCode int
	Url        string
}

func (e RequestFailedError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.Url, e.StatusCode)
}

// UnknownMeasurementError reports a measurement name missing from the
// id catalog. ClosestMatch carries the most similar known name, when
// one exists.
type UnknownMeasurementError struct {
	Name         string
	ClosestMatch string
}

func (e UnknownMeasurementError) Error() string {
	if e.ClosestMatch != "" {
		return fmt.Sprintf("measurement %q does not exist, did you mean %q?", e.Name, e.ClosestMatch)
	}
	return fmt.Sprintf("measurement %q does not exist", e.Name)
}

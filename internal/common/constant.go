package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the operator's
	// access token on requests to the check-in authority.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token value in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// DateLayout is the ISO calendar date used by gate profiles and filters.
	DateLayout = "2006-01-02"

	// ClockLayout is the 4-digit 24-hour time of day used by gate windows.
	ClockLayout = "1504"

	// CheckInTimeLayout is the canonical transport format of check-in
	// timestamps (UTC, millisecond precision).
	CheckInTimeLayout = "2006-01-02T15:04:05.000Z"
)

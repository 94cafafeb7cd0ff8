/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in frames sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Room and Membership Business Logic Errors
const (
	// ErrRoomSlugInvalid indicates that the supplied room slug fails validation.
	ErrRoomSlugInvalid = 2101

	// ErrDuplicateUsername indicates that the username is already taken inside the target room.
	ErrDuplicateUsername = 2102

	// ErrMemberNotFound indicates that no member matched the removal key in the target room.
	ErrMemberNotFound = 2103

	// ErrUnknownSender indicates that a message was sent by a username that is not a member of the room.
	ErrUnknownSender = 2104

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrUnrecognizedEvent indicates that an inbound frame carried an event kind outside the dispatch table.
	ErrUnrecognizedEvent = 2301
)

// 3xxx: Connection and Delivery Errors
const (
	// ErrUnknownConnection indicates that the connection identifier is not registered.
	ErrUnknownConnection = 3001

	// ErrDeliveryFailed indicates that the transport reported an error while delivering a payload.
	ErrDeliveryFailed = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)

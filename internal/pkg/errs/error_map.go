/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Membership Business Logic Errors
	ErrRoomSlugInvalid:       {Code: ErrRoomSlugInvalid, Message: "Invalid room name.", Status: http.StatusBadRequest},
	ErrDuplicateUsername:     {Code: ErrDuplicateUsername, Message: "That name is already taken in this room."},
	ErrMemberNotFound:        {Code: ErrMemberNotFound, Message: "Member not found in this room."},
	ErrUnknownSender:         {Code: ErrUnknownSender, Message: "You must join the room before sending messages."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrUnrecognizedEvent:     {Code: ErrUnrecognizedEvent, Message: "Unrecognized event: %q."},

	// 3xxx: Connection and Delivery Errors
	ErrUnknownConnection: {Code: ErrUnknownConnection, Message: "Connection %q is not registered."},
	ErrDeliveryFailed:    {Code: ErrDeliveryFailed, Message: "Delivery to connection %q failed."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes specific to the chat and negotiation core.
const (
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeNegotiationNotFound = "NEGOTIATION_ROOM_NOT_FOUND"
	CodeSelfChatNotAllowed  = "SELF_CHAT_NOT_ALLOWED"
	CodeContentRejected     = "CONTENT_REJECTED"
	CodeDuplicateEndRequest = "DUPLICATE_END_REQUEST"
	CodeEndRequestNotFound  = "END_REQUEST_NOT_FOUND"
	CodeEndRequestInvalid   = "END_REQUEST_INVALID"
	CodeStartPointNotSet    = "START_POINT_NOT_SET"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// AccessDenied is raised when the caller is not a room participant, or not
// the specific role an operation requires.
func AccessDenied(message string) *AppError {
	return &AppError{
		Code:    CodeAccessDenied,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

func RoomNotFound(roomID string) *AppError {
	return &AppError{
		Code:    CodeRoomNotFound,
		Message: fmt.Sprintf("chat room %s not found", roomID),
		Status:  http.StatusNotFound,
	}
}

func NegotiationRoomNotFound(roomID string) *AppError {
	return &AppError{
		Code:    CodeNegotiationNotFound,
		Message: fmt.Sprintf("negotiation room %s not found", roomID),
		Status:  http.StatusNotFound,
	}
}

func SelfChatNotAllowed() *AppError {
	return &AppError{
		Code:    CodeSelfChatNotAllowed,
		Message: "you cannot open a chat room with yourself",
		Status:  http.StatusBadRequest,
	}
}

func ContentRejected(message string) *AppError {
	return &AppError{
		Code:    CodeContentRejected,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func DuplicateEndRequest(roomID string) *AppError {
	return &AppError{
		Code:    CodeDuplicateEndRequest,
		Message: fmt.Sprintf("an end request is already pending for negotiation room %s", roomID),
		Status:  http.StatusConflict,
	}
}

func EndRequestNotFound(roomID string) *AppError {
	return &AppError{
		Code:    CodeEndRequestNotFound,
		Message: fmt.Sprintf("no pending end request for negotiation room %s", roomID),
		Status:  http.StatusNotFound,
	}
}

func EndRequestInvalid(roomID string) *AppError {
	return &AppError{
		Code:    CodeEndRequestInvalid,
		Message: fmt.Sprintf("pending end request for negotiation room %s does not match the room owner", roomID),
		Status:  http.StatusConflict,
	}
}

func StartPointNotSet(roomID string) *AppError {
	return &AppError{
		Code:    CodeStartPointNotSet,
		Message: fmt.Sprintf("negotiation room %s has no start point", roomID),
		Status:  http.StatusConflict,
	}
}

// DeliveryFailed reports a message that was persisted but whose real-time
// notification could not be published.
func DeliveryFailed(message string, err error) *AppError {
	return &AppError{
		Code:    CodeDeliveryFailed,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

package domain

import "fmt"

// AppError is the base domain error type. Details carries structured fields
// the UI needs to explain the failure (current status, gold shortfall).
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Status  int                    `json:"-"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

// ErrAlreadyCompleted guards duplicate daily submissions. The existing
// completion's status is included so the UI can say why resubmission is
// blocked (pending, accepted and denied all block the date).
func ErrAlreadyCompleted(status CompletionStatus) *AppError {
	return &AppError{
		Code:    "ALREADY_COMPLETED",
		Message: fmt.Sprintf("quest already completed today (status: %s)", status),
		Details: map[string]interface{}{"status": string(status)},
		Status:  400,
	}
}

// ErrAlreadyProcessed guards double approval/denial of a completion.
func ErrAlreadyProcessed(status CompletionStatus) *AppError {
	return &AppError{
		Code:    "ALREADY_PROCESSED",
		Message: fmt.Sprintf("completion already processed (status: %s)", status),
		Details: map[string]interface{}{"status": string(status)},
		Status:  400,
	}
}

// ErrInsufficientGold reports the shortfall so the caller can render
// required vs. available.
func ErrInsufficientGold(required, available int64) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_GOLD",
		Message: fmt.Sprintf("insufficient gold: need %d, have %d", required, available),
		Details: map[string]interface{}{
			"required":  required,
			"available": available,
			"shortfall": required - available,
		},
		Status: 400,
	}
}

func ErrTreasureUnavailable(id string) *AppError {
	return &AppError{Code: "TREASURE_UNAVAILABLE", Message: fmt.Sprintf("treasure %s is not available", id), Status: 400}
}

func ErrQuestInactive(id string) *AppError {
	return &AppError{Code: "QUEST_INACTIVE", Message: fmt.Sprintf("quest %s is not active", id), Status: 400}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

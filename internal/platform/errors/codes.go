// Package errors provides coded errors with localized user messages.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInternal represents an unexpected failure.
	CodeInternal Code = "INTERNAL"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"

	// Content errors
	CodeContentInvalid Code = "CONTENT_INVALID"

	// Battle errors
	CodeBattleRosterInvalid   Code = "BATTLE_ROSTER_INVALID"
	CodeBattleMoveNotFound    Code = "BATTLE_MOVE_NOT_FOUND"
	CodeBattleNotAccepting    Code = "BATTLE_NOT_ACCEPTING"
	CodeBattleEnded           Code = "BATTLE_ENDED"
	CodeBattleStrategyInvalid Code = "BATTLE_STRATEGY_INVALID"
)

// Codes returns every known code.
func Codes() []Code {
	return []Code{
		CodeUnknown, CodeInternal, CodeInvalidArgument, CodeNotFound, CodeContentInvalid,
		CodeBattleRosterInvalid, CodeBattleMoveNotFound, CodeBattleNotAccepting,
		CodeBattleEnded, CodeBattleStrategyInvalid,
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad input
	case CodeInvalidArgument,
		CodeContentInvalid,
		CodeBattleRosterInvalid,
		CodeBattleMoveNotFound,
		CodeBattleStrategyInvalid:
		return http.StatusBadRequest

	// State doesn't allow the operation
	case CodeBattleNotAccepting,
		CodeBattleEnded:
		return http.StatusConflict

	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

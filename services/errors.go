package services

import "errors"

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ошибки валидации счёта (до сетевого вызова)
	ErrInvalidScores    = errors.New("enter valid scores")
	ErrEqualScores      = errors.New("scores cannot be equal")
	ErrPlaceholderMatch = errors.New("placeholder matches cannot be scored")

	// Ошибки внешнего сервиса
	ErrScoreRejected      = errors.New("score submission rejected")
	ErrBackendUnavailable = errors.New("tournament backend unavailable")
	ErrBracketUnavailable = errors.New("bracket unavailable")

	// Подтверждение продвижения участника
	ErrAdvanceNotApplicable = errors.New("advance is not applicable to this match")

	ErrMatchNotFound      = errors.New("match not found in the current bracket")
	ErrPublishingDisabled = errors.New("bracket publishing is not configured")
	ErrInvalidTournament  = errors.New("invalid tournament id")
)

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-console/backend"
	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/metrics"
	"github.com/Dosada05/bracket-console/models"
	"github.com/Dosada05/bracket-console/utils"
)

// refreshAfterSubmitTimeout bounds the rebuild that follows a successful
// submission. The rebuild is detached from the caller so the room still gets
// the update if the submitting client goes away.
const refreshAfterSubmitTimeout = 30 * time.Second

type ScoreSubmitter interface {
	UpdateMatchScore(ctx context.Context, matchID models.MatchID, score1, score2 int) (*backend.ScoreUpdate, error)
}

// ScoreResult is the outcome of an accepted submission. Bracket is the
// rebuilt snapshot; it is nil when the rebuild failed (RefreshError) or was
// overtaken by a newer one that will be pushed to the room instead.
type ScoreResult struct {
	MatchID        models.MatchID  `json:"match_id"`
	Score1         int             `json:"score1"`
	Score2         int             `json:"score2"`
	AutoProgressed bool            `json:"auto_progressed"`
	Message        string          `json:"message,omitempty"`
	Bracket        *models.Bracket `json:"bracket,omitempty"`
	RefreshError   error           `json:"-"`
}

type ScoreService interface {
	SubmitScore(ctx context.Context, tournamentID int, matchID models.MatchID, scoreA, scoreB string) (*ScoreResult, error)
}

type scoreService struct {
	submitter ScoreSubmitter
	brackets  BracketService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewScoreService(submitter ScoreSubmitter, bracketService BracketService, m *metrics.Metrics, logger *slog.Logger) ScoreService {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scoreService{
		submitter: submitter,
		brackets:  bracketService,
		metrics:   m,
		logger:    logger,
	}
}

// ValidateScores checks a pair of raw score inputs without touching the
// network.
func ValidateScores(scoreA, scoreB string) (int, int, error) {
	a, okA := utils.ParseScore(scoreA)
	b, okB := utils.ParseScore(scoreB)
	if !okA || !okB {
		return 0, 0, ErrInvalidScores
	}
	if a == b {
		return 0, 0, ErrEqualScores
	}
	return a, b, nil
}

// SubmitScore validates the pair locally, submits it and, once the backend
// has answered, rebuilds the bracket from a fresh fetch. Nothing in the
// current snapshot is changed speculatively.
func (s *scoreService) SubmitScore(ctx context.Context, tournamentID int, matchID models.MatchID, scoreA, scoreB string) (*ScoreResult, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	a, b, err := ValidateScores(scoreA, scoreB)
	if err != nil {
		s.metrics.ScoreSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if matchID == "" || brackets.IsSyntheticID(matchID) {
		s.metrics.ScoreSubmissions.WithLabelValues("invalid").Inc()
		return nil, ErrPlaceholderMatch
	}

	update, err := s.submitter.UpdateMatchScore(ctx, matchID, a, b)
	if err != nil {
		return nil, s.submissionError(tournamentID, matchID, err)
	}
	s.metrics.ScoreSubmissions.WithLabelValues("ok").Inc()
	s.logger.Info("score submitted",
		slog.Int("tournament_id", tournamentID),
		slog.String("match_id", matchID.String()),
		slog.Int("score1", a),
		slog.Int("score2", b),
		slog.Bool("auto_progressed", update.AutoProgressed))

	result := &ScoreResult{
		MatchID:        matchID,
		Score1:         a,
		Score2:         b,
		AutoProgressed: update.AutoProgressed,
		Message:        update.Message,
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshAfterSubmitTimeout)
	defer cancel()
	bracket, err := s.brackets.Current(refreshCtx, tournamentID)
	switch {
	case errors.Is(err, ErrRefreshSuperseded):
	case err != nil:
		s.logger.Warn("bracket refresh after score submission failed",
			slog.Int("tournament_id", tournamentID),
			slog.String("match_id", matchID.String()),
			slog.Any("error", err))
		result.RefreshError = err
	default:
		result.Bracket = bracket
	}
	return result, nil
}

func (s *scoreService) submissionError(tournamentID int, matchID models.MatchID, err error) error {
	var reqErr *backend.RequestError
	switch {
	case errors.Is(err, context.Canceled):
		s.metrics.ScoreSubmissions.WithLabelValues("cancelled").Inc()
		return err
	case errors.As(err, &reqErr):
		s.metrics.ScoreSubmissions.WithLabelValues("rejected").Inc()
		s.logger.Warn("score submission rejected",
			slog.Int("tournament_id", tournamentID),
			slog.String("match_id", matchID.String()),
			slog.String("message", reqErr.Message))
		if reqErr.Message == "" {
			return ErrScoreRejected
		}
		return fmt.Errorf("%w: %s", ErrScoreRejected, reqErr.Message)
	default:
		s.metrics.ScoreSubmissions.WithLabelValues("error").Inc()
		s.logger.Error("score submission failed",
			slog.Int("tournament_id", tournamentID),
			slog.String("match_id", matchID.String()),
			slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
}

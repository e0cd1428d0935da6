package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/metrics"
	"github.com/Dosada05/bracket-console/models"
)

// AdvanceOutcome describes what an activation of the advance control did.
type AdvanceOutcome struct {
	MatchID models.MatchID `json:"match_id"`
	State   string         `json:"state"`
	Fired   bool           `json:"fired"`
	Result  *ScoreResult   `json:"result,omitempty"`
}

type AdvanceService interface {
	Activate(ctx context.Context, session string, tournamentID int, matchID models.MatchID) (*AdvanceOutcome, error)
	Leave(session string, tournamentID int, matchID models.MatchID) bool
	Reconcile(tournamentID int, bracket *models.Bracket)
	ArmedCount() int
}

// armedGateTTL bounds how long an armed gate waits for its confirmation.
// Gates of sessions that went away are swept after it.
const armedGateTTL = 2 * time.Minute

type gateKey struct {
	session      string
	tournamentID int
	matchID      models.MatchID
}

// advanceService keeps the per-session confirmation state. It lives next to
// the bracket snapshots but never leaves this process.
type advanceService struct {
	brackets BracketService
	scores   ScoreService
	metrics  *metrics.Metrics
	logger   *slog.Logger

	now func() time.Time

	mu    sync.Mutex
	gates map[gateKey]*gateEntry
}

type gateEntry struct {
	gate    brackets.AdvanceGate
	armedAt time.Time
}

// NewAdvanceService registers itself for snapshot replacements so gates of
// matches that stopped being eligible are dropped.
func NewAdvanceService(bracketService BracketService, scoreService ScoreService, m *metrics.Metrics, logger *slog.Logger) AdvanceService {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &advanceService{
		brackets: bracketService,
		scores:   scoreService,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		gates:    make(map[gateKey]*gateEntry),
	}
	bracketService.OnSnapshot(s.Reconcile)
	return s
}

// Activate arms the gate of an eligible match, or fires it when it is
// already armed. Firing submits a walkover: the known participant scores 1,
// the undetermined slot 0.
func (s *advanceService) Activate(ctx context.Context, session string, tournamentID int, matchID models.MatchID) (*AdvanceOutcome, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	node, err := s.lookup(ctx, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	key := gateKey{session: session, tournamentID: tournamentID, matchID: matchID}
	if !node.Advanceable {
		s.drop(key)
		s.metrics.AdvanceActivation.WithLabelValues("not_applicable").Inc()
		return nil, ErrAdvanceNotApplicable
	}

	s.mu.Lock()
	now := s.now()
	s.sweepLocked(now)
	entry, ok := s.gates[key]
	if !ok {
		entry = &gateEntry{}
		s.gates[key] = entry
	}
	action := entry.gate.Activate()
	if action == brackets.GateFire {
		delete(s.gates, key)
	} else {
		entry.armedAt = now
	}
	s.mu.Unlock()

	if action != brackets.GateFire {
		s.metrics.AdvanceActivation.WithLabelValues("arm").Inc()
		return &AdvanceOutcome{MatchID: matchID, State: brackets.GateArmed.String()}, nil
	}

	s.metrics.AdvanceActivation.WithLabelValues("fire").Inc()
	scoreA, scoreB := walkoverScores(node.MatchRecord)
	s.logger.Info("advancing participant by walkover",
		slog.Int("tournament_id", tournamentID),
		slog.String("match_id", matchID.String()),
		slog.String("score1", scoreA),
		slog.String("score2", scoreB))

	result, err := s.scores.SubmitScore(ctx, tournamentID, matchID, scoreA, scoreB)
	if err != nil {
		return nil, err
	}
	return &AdvanceOutcome{
		MatchID: matchID,
		State:   brackets.GateIdle.String(),
		Fired:   true,
		Result:  result,
	}, nil
}

// Leave disarms the gate when the pointer leaves the control.
func (s *advanceService) Leave(session string, tournamentID int, matchID models.MatchID) bool {
	key := gateKey{session: session, tournamentID: tournamentID, matchID: matchID}
	s.mu.Lock()
	entry, ok := s.gates[key]
	if ok {
		delete(s.gates, key)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	wasArmed := entry.gate.Leave()
	if wasArmed {
		s.metrics.AdvanceActivation.WithLabelValues("leave").Inc()
	}
	return wasArmed
}

// Reconcile drops gates of the tournament whose match is gone or no longer
// eligible in the new snapshot.
func (s *advanceService) Reconcile(tournamentID int, bracket *models.Bracket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.gates {
		if key.tournamentID != tournamentID {
			continue
		}
		node, ok := bracket.FindMatch(key.matchID)
		if !ok || !node.Advanceable {
			delete(s.gates, key)
			s.metrics.AdvanceActivation.WithLabelValues("expired").Inc()
		}
	}
}

func (s *advanceService) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	n := 0
	for _, e := range s.gates {
		if e.gate.State() == brackets.GateArmed {
			n++
		}
	}
	return n
}

// sweepLocked drops gates armed longer than armedGateTTL ago. s.mu must be held.
func (s *advanceService) sweepLocked(now time.Time) {
	for key, e := range s.gates {
		if now.Sub(e.armedAt) > armedGateTTL {
			delete(s.gates, key)
			s.metrics.AdvanceActivation.WithLabelValues("expired").Inc()
		}
	}
}

func (s *advanceService) lookup(ctx context.Context, tournamentID int, matchID models.MatchID) (*models.MatchNode, error) {
	bracket, ok := s.brackets.Snapshot(tournamentID)
	if !ok {
		var err error
		bracket, err = s.brackets.Current(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
	}
	node, ok := bracket.FindMatch(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return node, nil
}

func (s *advanceService) drop(key gateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gates, key)
}

// walkoverScores gives the known participant's slot the win.
func walkoverScores(m models.MatchRecord) (string, string) {
	if m.Participants[0].IsTBD() {
		return "0", "1"
	}
	return "1", "0"
}

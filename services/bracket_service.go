package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/bracket-console/backend"
	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/metrics"
	"github.com/Dosada05/bracket-console/models"
	"github.com/Dosada05/bracket-console/storage"
)

// ErrRefreshSuperseded is returned to a refresh that was overtaken by a newer
// refresh of the same tournament. The newer one publishes the snapshot.
var ErrRefreshSuperseded = errors.New("bracket refresh superseded by a newer one")

const loadManyConcurrency = 4

type BracketFetcher interface {
	FetchBracket(ctx context.Context, tournamentID int) (*models.BracketData, []models.Diagnostic, error)
}

type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// SnapshotListener is called after a tournament snapshot was replaced.
type SnapshotListener func(tournamentID int, bracket *models.Bracket)

type BracketService interface {
	Refresh(ctx context.Context, tournamentID int) (*models.Bracket, error)
	Current(ctx context.Context, tournamentID int) (*models.Bracket, error)
	LoadMany(ctx context.Context, tournamentIDs []int) ([]*models.Bracket, error)
	Snapshot(tournamentID int) (*models.Bracket, bool)
	Publish(ctx context.Context, tournamentID int) (*storage.UploadResult, error)
	Unpublish(ctx context.Context, tournamentID int) error
	OnSnapshot(listener SnapshotListener)
}

type bracketService struct {
	fetcher     BracketFetcher
	broadcaster Broadcaster
	uploader    storage.FileUploader
	layout      brackets.LayoutOverrides
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu         sync.Mutex
	generation map[int]uint64
	cancels    map[int]context.CancelFunc
	flights    map[int]*refreshFlight
	snapshots  map[int]*models.Bracket
	listeners  []SnapshotListener
}

// refreshFlight is one in-flight refresh; done is closed once its outcome is set.
type refreshFlight struct {
	done    chan struct{}
	bracket *models.Bracket
	err     error
}

// NewBracketService wires the refresh cycle. broadcaster and uploader may be
// nil: updates are then not pushed and publishing is disabled.
func NewBracketService(
	fetcher BracketFetcher,
	broadcaster Broadcaster,
	uploader storage.FileUploader,
	layout brackets.LayoutOverrides,
	m *metrics.Metrics,
	logger *slog.Logger,
) BracketService {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		fetcher:     fetcher,
		broadcaster: broadcaster,
		uploader:    uploader,
		layout:      layout,
		metrics:     m,
		logger:      logger,
		generation:  make(map[int]uint64),
		cancels:     make(map[int]context.CancelFunc),
		flights:     make(map[int]*refreshFlight),
		snapshots:   make(map[int]*models.Bracket),
	}
}

func (s *bracketService) OnSnapshot(listener SnapshotListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *bracketService) Snapshot(tournamentID int) (*models.Bracket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.snapshots[tournamentID]
	return b, ok
}

// Refresh fetches the authoritative match list, rebuilds the bracket and
// replaces the tournament snapshot. A refresh started later for the same
// tournament cancels this one; a stale result never replaces a fresher one.
func (s *bracketService) Refresh(ctx context.Context, tournamentID int) (_ *models.Bracket, err error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}

	refreshCtx, gen, flight := s.begin(ctx, tournamentID)
	var bracket *models.Bracket
	defer func() {
		flight.bracket, flight.err = bracket, err
		close(flight.done)
		s.end(tournamentID, gen)
	}()

	data, diags, err := s.fetcher.FetchBracket(refreshCtx, tournamentID)
	if err != nil {
		if !s.isCurrent(tournamentID, gen) {
			s.metrics.BracketRefreshes.WithLabelValues("superseded").Inc()
			return nil, ErrRefreshSuperseded
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, s.fail(tournamentID, gen, err)
	}

	bracket, err = brackets.Build(tournamentID, *data, s.layout)
	if err != nil {
		return nil, s.fail(tournamentID, gen, err)
	}
	bracket.Diagnostics = append(diags, bracket.Diagnostics...)
	s.report(tournamentID, bracket.Diagnostics)

	s.mu.Lock()
	if s.generation[tournamentID] != gen {
		s.mu.Unlock()
		bracket = nil
		s.metrics.BracketRefreshes.WithLabelValues("superseded").Inc()
		return nil, ErrRefreshSuperseded
	}
	s.snapshots[tournamentID] = bracket
	listeners := append([]SnapshotListener(nil), s.listeners...)
	s.mu.Unlock()

	s.metrics.BracketRefreshes.WithLabelValues("ok").Inc()
	s.logger.Info("bracket rebuilt",
		slog.Int("tournament_id", tournamentID),
		slog.Int("segments", len(bracket.Segments)),
		slog.Int("anomalies", len(bracket.Diagnostics)))

	s.broadcast(tournamentID, brackets.MessageBracketUpdated, bracket)
	for _, l := range listeners {
		l(tournamentID, bracket)
	}
	return bracket, nil
}

func (s *bracketService) begin(ctx context.Context, tournamentID int) (context.Context, uint64, *refreshFlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[tournamentID]; ok {
		cancel()
	}
	s.generation[tournamentID]++
	gen := s.generation[tournamentID]
	refreshCtx, cancel := context.WithCancel(ctx)
	s.cancels[tournamentID] = cancel
	flight := &refreshFlight{done: make(chan struct{})}
	s.flights[tournamentID] = flight
	return refreshCtx, gen, flight
}

func (s *bracketService) end(tournamentID int, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation[tournamentID] == gen {
		if cancel, ok := s.cancels[tournamentID]; ok {
			cancel()
			delete(s.cancels, tournamentID)
		}
		delete(s.flights, tournamentID)
	}
}

// Current is Refresh for callers that only need an up-to-date bracket: when
// a newer refresh overtakes this one, Current waits for it and returns its
// outcome instead of ErrRefreshSuperseded.
func (s *bracketService) Current(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	bracket, err := s.Refresh(ctx, tournamentID)
	for errors.Is(err, ErrRefreshSuperseded) {
		s.mu.Lock()
		flight := s.flights[tournamentID]
		s.mu.Unlock()

		if flight == nil {
			// The newer refresh already finished.
			if snapshot, ok := s.Snapshot(tournamentID); ok {
				return snapshot, nil
			}
			return nil, err
		}
		select {
		case <-flight.done:
			bracket, err = flight.bracket, flight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		// The other caller went away; its cancellation is not ours.
		if isContextError(err) && ctx.Err() == nil {
			bracket, err = s.Refresh(ctx, tournamentID)
		}
	}
	return bracket, err
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *bracketService) isCurrent(tournamentID int, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation[tournamentID] == gen
}

// fail drops the snapshot so the view shows "bracket unavailable" instead of
// stale data, and tells the room.
func (s *bracketService) fail(tournamentID int, gen uint64, err error) error {
	s.mu.Lock()
	if s.generation[tournamentID] == gen {
		delete(s.snapshots, tournamentID)
	}
	s.mu.Unlock()

	s.metrics.BracketRefreshes.WithLabelValues("error").Inc()
	s.logger.Error("bracket refresh failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	s.broadcast(tournamentID, brackets.MessageBracketUnavailable, map[string]string{"message": ErrBracketUnavailable.Error()})

	if errors.Is(err, backend.ErrUnavailable) {
		return fmt.Errorf("%w: %w: %v", ErrBracketUnavailable, ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrBracketUnavailable, err)
}

func (s *bracketService) report(tournamentID int, diags []models.Diagnostic) {
	for _, d := range diags {
		s.metrics.BracketAnomalies.WithLabelValues(string(d.Kind)).Inc()
		s.logger.Warn("bracket data anomaly",
			slog.Int("tournament_id", tournamentID),
			slog.String("kind", string(d.Kind)),
			slog.String("match_id", d.MatchID.String()),
			slog.String("segment", string(d.Segment)),
			slog.Int("round", d.Round),
			slog.String("message", d.Message))
	}
}

func (s *bracketService) broadcast(tournamentID int, messageType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	s.broadcaster.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}

// LoadMany refreshes several tournaments concurrently. The result keeps the
// order of tournamentIDs, a repeated id is loaded once and shared; the first
// failure cancels the rest.
func (s *bracketService) LoadMany(ctx context.Context, tournamentIDs []int) ([]*models.Bracket, error) {
	unique := make([]int, 0, len(tournamentIDs))
	index := make(map[int]int, len(tournamentIDs))
	for _, id := range tournamentIDs {
		if _, seen := index[id]; !seen {
			index[id] = len(unique)
			unique = append(unique, id)
		}
	}
	loaded := make([]*models.Bracket, len(unique))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadManyConcurrency)
	for i, id := range unique {
		i, id := i, id
		g.Go(func() error {
			b, err := s.Current(gCtx, id)
			if err != nil {
				return fmt.Errorf("tournament %d: %w", id, err)
			}
			loaded[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*models.Bracket, len(tournamentIDs))
	for i, id := range tournamentIDs {
		result[i] = loaded[index[id]]
	}
	return result, nil
}

// Publish uploads a freshly built bracket to object storage.
func (s *bracketService) Publish(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishingDisabled
	}
	bracket, err := s.Current(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(bracket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket %d: %w", tournamentID, err)
	}
	result, err := s.uploader.Upload(ctx, storage.SnapshotKey(tournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to publish bracket %d: %w", tournamentID, err)
	}
	s.logger.Info("bracket published", slog.Int("tournament_id", tournamentID), slog.String("location", result.Location))
	return result, nil
}

func (s *bracketService) Unpublish(ctx context.Context, tournamentID int) error {
	if s.uploader == nil {
		return ErrPublishingDisabled
	}
	if tournamentID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	if err := s.uploader.Delete(ctx, storage.SnapshotKey(tournamentID)); err != nil {
		return fmt.Errorf("failed to unpublish bracket %d: %w", tournamentID, err)
	}
	s.logger.Info("bracket unpublished", slog.Int("tournament_id", tournamentID))
	return nil
}

package services

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/Dosada05/bracket-console/backend"
	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/models"
	"github.com/Dosada05/bracket-console/storage"
)

// events records the order of backend calls across fakes.
type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(ev string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, ev)
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

type fakeFetcher struct {
	events *events
	fn     func(ctx context.Context, tournamentID int) (*models.BracketData, []models.Diagnostic, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeFetcher) FetchBracket(ctx context.Context, tournamentID int) (*models.BracketData, []models.Diagnostic, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.events != nil {
		f.events.add("fetch")
	}
	return f.fn(ctx, tournamentID)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type submitCall struct {
	matchID        models.MatchID
	score1, score2 int
}

type fakeSubmitter struct {
	events *events
	update *backend.ScoreUpdate
	err    error

	mu    sync.Mutex
	calls []submitCall
}

func (f *fakeSubmitter) UpdateMatchScore(ctx context.Context, matchID models.MatchID, score1, score2 int) (*backend.ScoreUpdate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, submitCall{matchID: matchID, score1: score1, score2: score2})
	f.mu.Unlock()
	if f.events != nil {
		f.events.add("submit")
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.update == nil {
		return &backend.ScoreUpdate{}, nil
	}
	return f.update, nil
}

func (f *fakeSubmitter) submitted() []submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitCall(nil), f.calls...)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message.(brackets.WebSocketMessage))
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Type
	}
	return out
}

type fakeUploader struct {
	uploaded map[string][]byte
	deleted  []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	if f.uploaded == nil {
		f.uploaded = make(map[string][]byte)
	}
	f.uploaded[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func participant(id, name string) models.Participant {
	return models.Participant{ID: &id, Name: name}
}

// sampleData is a 2-round bracket with one walkover-eligible match ("w2")
// and one regular match ("w1").
func sampleData() *models.BracketData {
	pos1, pos2 := 1, 2
	return &models.BracketData{
		TotalRounds: 2,
		Matches: []models.MatchRecord{
			{
				ID: "w1", Segment: models.SegmentWinners, Round: 1, Position: &pos1,
				Status:       models.StatusScheduled,
				Participants: [2]models.Participant{participant("1", "Alpha"), participant("2", "Beta")},
			},
			{
				ID: "w2", Segment: models.SegmentWinners, Round: 1, Position: &pos2,
				Status:       models.StatusScheduled,
				Participants: [2]models.Participant{participant("3", "Gamma"), models.TBD()},
			},
		},
	}
}

func staticFetcher(data *models.BracketData) *fakeFetcher {
	return &fakeFetcher{fn: func(ctx context.Context, tournamentID int) (*models.BracketData, []models.Diagnostic, error) {
		return data, nil, nil
	}}
}

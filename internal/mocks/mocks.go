// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lunchybot/lunchy/internal/picker"
	"github.com/lunchybot/lunchy/internal/scheduler"
	"github.com/lunchybot/lunchy/internal/session"
	"github.com/lunchybot/lunchy/internal/slack"
	"github.com/lunchybot/lunchy/internal/storage"
	"github.com/lunchybot/lunchy/internal/venue"
)

// Compile-time checks to ensure mocks implement their interfaces.
var (
	_ storage.Store        = (*MockStore)(nil)
	_ venue.Lookup         = (*MockLookup)(nil)
	_ session.Replier      = (*MockReplier)(nil)
	_ picker.Announcer     = (*MockGateway)(nil)
	_ slack.Gateway        = (*MockGateway)(nil)
	_ slack.Dispatcher     = (*MockDispatcher)(nil)
	_ scheduler.JobHandler = (*MockJobHandler)(nil)
)

// MockStore is an in-memory Store.
type MockStore struct {
	mu          sync.Mutex
	restaurants map[string]storage.Restaurant
	insertCalls []string

	// Overrides for error injection.
	GetFunc            func(ctx context.Context, name string) (*storage.Restaurant, error)
	InsertFunc         func(ctx context.Context, r *storage.Restaurant) error
	ListFunc           func(ctx context.Context) ([]storage.Restaurant, error)
	SetLastVisitedFunc func(ctx context.Context, name string, visited time.Time) error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{restaurants: make(map[string]storage.Restaurant)}
}

// Add seeds the store with a restaurant.
func (m *MockStore) Add(r storage.Restaurant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[r.Name] = r
}

// Get implements storage.Store.
func (m *MockStore) Get(ctx context.Context, name string) (*storage.Restaurant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

// Insert implements storage.Store and records the call.
func (m *MockStore) Insert(ctx context.Context, r *storage.Restaurant) error {
	m.mu.Lock()
	m.insertCalls = append(m.insertCalls, r.Name)
	m.mu.Unlock()

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[r.Name] = *r
	return nil
}

// List implements storage.Store.
func (m *MockStore) List(ctx context.Context) ([]storage.Restaurant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	return out, nil
}

// SetLastVisited implements storage.Store.
func (m *MockStore) SetLastVisited(ctx context.Context, name string, visited time.Time) error {
	if m.SetLastVisitedFunc != nil {
		return m.SetLastVisitedFunc(ctx, name, visited)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[name]
	if !ok {
		return storage.ErrNotFound
	}
	r.LastVisited = &visited
	m.restaurants[name] = r
	return nil
}

// InsertCalls returns the names passed to Insert, in order.
func (m *MockStore) InsertCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.insertCalls...)
}

// MockLookup is a scripted venue Lookup.
type MockLookup struct {
	mu      sync.Mutex
	Venues  []venue.Venue
	Err     error
	queries []string

	SearchFunc func(ctx context.Context, query string) ([]venue.Venue, error)
}

// Search implements venue.Lookup.
func (m *MockLookup) Search(ctx context.Context, query string) ([]venue.Venue, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Venues, nil
}

// Queries returns the search queries seen, in order.
func (m *MockLookup) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// SentMessage is one recorded outbound message.
type SentMessage struct {
	ChannelID string
	Text      string
}

// MockReplier records replies.
type MockReplier struct {
	mu       sync.Mutex
	messages []SentMessage

	SendFunc func(ctx context.Context, channelID string, text string) error
}

// Send implements session.Replier.
func (m *MockReplier) Send(ctx context.Context, channelID string, text string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, channelID, text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{ChannelID: channelID, Text: text})
	return nil
}

// Messages returns the recorded messages, in order.
func (m *MockReplier) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.messages...)
}

// LastMessage returns the most recent message text, or "".
func (m *MockReplier) LastMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1].Text
}

// MockGateway is a full chat gateway double.
type MockGateway struct {
	MockReplier

	Self       string
	ChannelIDs map[string]string // name -> ID

	Incoming chan slack.IncomingMessage

	ChannelIDByNameFunc func(ctx context.Context, name string) (string, error)
}

// NewMockGateway creates a gateway double with a buffered incoming stream.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Self:       "UBOT",
		ChannelIDs: make(map[string]string),
		Incoming:   make(chan slack.IncomingMessage, 16),
	}
}

// Subscribe implements slack.Gateway.
func (m *MockGateway) Subscribe(_ context.Context) (<-chan slack.IncomingMessage, error) {
	return m.Incoming, nil
}

// SelfID implements slack.Gateway.
func (m *MockGateway) SelfID() string {
	return m.Self
}

// ChannelIDByName implements slack.Gateway.
func (m *MockGateway) ChannelIDByName(ctx context.Context, name string) (string, error) {
	if m.ChannelIDByNameFunc != nil {
		return m.ChannelIDByNameFunc(ctx, name)
	}
	if id, ok := m.ChannelIDs[name]; ok {
		return id, nil
	}
	return "", fmt.Errorf("channel %q not found", name)
}

// MockDispatcher records dispatched messages.
type MockDispatcher struct {
	mu       sync.Mutex
	messages []slack.IncomingMessage
}

// Dispatch implements slack.Dispatcher.
func (m *MockDispatcher) Dispatch(_ context.Context, msg slack.IncomingMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Dispatched returns the messages seen, in order.
func (m *MockDispatcher) Dispatched() []slack.IncomingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]slack.IncomingMessage(nil), m.messages...)
}

// MockJobHandler is a scripted scheduler job.
type MockJobHandler struct {
	mu    sync.Mutex
	runs  int
	Error error

	ExecuteFunc func(ctx context.Context) error
}

// Execute implements scheduler.JobHandler.
func (m *MockJobHandler) Execute(ctx context.Context) error {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx)
	}
	return m.Error
}

// Name implements scheduler.JobHandler.
func (m *MockJobHandler) Name() string {
	return "mock-job"
}

// Runs returns how many times the job executed.
func (m *MockJobHandler) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

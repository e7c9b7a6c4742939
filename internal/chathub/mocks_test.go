package chathub_test

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"marketchat/backend/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPresence is a testify mock of chathub.PresenceTracker.
type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) MarkOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockPresence) MarkOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockClient is a transport-free chathub.Client backed by a buffered channel.
type MockClient struct {
	userID string
	send   chan []byte
	closed atomic.Bool
	mu     sync.Mutex
	runs   int
}

func newMockClient(userID string) *MockClient {
	return newMockClientWithBuffer(userID, 32)
}

func newMockClientWithBuffer(userID string, buffer int) *MockClient {
	return &MockClient{userID: userID, send: make(chan []byte, buffer)}
}

func (c *MockClient) GetUserID() string             { return c.userID }
func (c *MockClient) GetSendChannel() chan<- []byte { return c.send }

func (c *MockClient) Run() {
	c.mu.Lock()
	c.runs++
	c.mu.Unlock()
}

func (c *MockClient) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.send)
	}
}

func (c *MockClient) IsClosed() bool {
	return c.closed.Load()
}

// Drain returns every frame queued so far without blocking.
func (c *MockClient) Drain(t *testing.T) []models.Frame {
	t.Helper()
	var frames []models.Frame
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return frames
			}
			var frame models.Frame
			require.NoError(t, json.Unmarshal(raw, &frame))
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

// frameData decodes the data object of an outbound frame.
func frameData(t *testing.T, frame models.Frame) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	return data
}

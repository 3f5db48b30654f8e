package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) Notify(notification Notification) {
	that.Called(notification)
}

type mockObserver struct {
	mock.Mock
}

func (that *mockObserver) OnState(snapshot *entity.Snapshot) {
	that.Called(snapshot)
}

func (that *mockObserver) OnConnectivity(connected bool) {
	that.Called(connected)
}

func (that *mockObserver) OnOutcome(outcome entity.Outcome) {
	that.Called(outcome)
}

// newMockObserver accepts any state and connectivity updates.
func newMockObserver() *mockObserver {
	observer := &mockObserver{}
	observer.On("OnState", mock.Anything).Return().Maybe()
	observer.On("OnConnectivity", mock.Anything).Return().Maybe()

	return observer
}

type mockSessionClient struct {
	mock.Mock
}

func (that *mockSessionClient) CreateSession(ctx context.Context, size int) (*entity.Session, error) {
	args := that.Called(ctx, size)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessionClient) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

// fakeConnection stands in for the websocket; the test plays the server through onSend.
type fakeConnection struct {
	mu        sync.Mutex
	connected bool
	sent      []any
	closed    int
	done      chan struct{}
	closeOnce sync.Once

	onSend         func(payload any)
	onMessage      func(msg *entity.ServerMessage)
	onConnectivity func(connected bool)
}

func (that *fakeConnection) Send(payload any) {
	that.mu.Lock()
	if !that.connected {
		that.mu.Unlock()
		return
	}
	that.sent = append(that.sent, payload)
	onSend := that.onSend
	that.mu.Unlock()

	if onSend != nil {
		onSend(payload)
	}
}

func (that *fakeConnection) Connected() bool {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.connected
}

func (that *fakeConnection) Done() <-chan struct{} {
	return that.done
}

func (that *fakeConnection) Close() {
	that.mu.Lock()
	that.closed++
	that.mu.Unlock()

	that.drop()
}

// drop simulates the connection going away.
func (that *fakeConnection) drop() {
	that.closeOnce.Do(func() {
		that.mu.Lock()
		that.connected = false
		that.mu.Unlock()

		that.onConnectivity(false)
		close(that.done)
	})
}

func (that *fakeConnection) open() {
	that.mu.Lock()
	that.connected = true
	that.mu.Unlock()

	that.onConnectivity(true)
}

// push delivers a message as if the server sent it.
func (that *fakeConnection) push(msg *entity.ServerMessage) {
	that.onMessage(msg)
}

func (that *fakeConnection) Sent() []any {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]any(nil), that.sent...)
}

func (that *fakeConnection) Closed() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.closed
}

// fakeDialer records every connection it hands out.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConnection
	pairs [][2]string
}

func (that *fakeDialer) Dial(
	_ context.Context,
	sessionID, playerID string,
	onMessage func(msg *entity.ServerMessage),
	onConnectivity func(connected bool),
) Connection {
	conn := &fakeConnection{
		done:           make(chan struct{}),
		onMessage:      onMessage,
		onConnectivity: onConnectivity,
	}

	that.mu.Lock()
	that.conns = append(that.conns, conn)
	that.pairs = append(that.pairs, [2]string{sessionID, playerID})
	that.mu.Unlock()

	return conn
}

func (that *fakeDialer) last() *fakeConnection {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.conns[len(that.conns)-1]
}

func signPtr(sign entity.Sign) *entity.Sign {
	return &sign
}

func board(rows ...string) [][]entity.Sign {
	state := make([][]entity.Sign, len(rows))
	for i, row := range rows {
		state[i] = make([]entity.Sign, len(row))
		for j, cell := range row {
			switch cell {
			case 'x':
				state[i][j] = entity.SignCross
			case 'o':
				state[i][j] = entity.SignNaught
			default:
				state[i][j] = entity.SignEmpty
			}
		}
	}
	return state
}

func stateMessage(state [][]entity.Sign, yourTurn bool) *entity.ServerMessage {
	return &entity.ServerMessage{Snapshot: entity.Snapshot{
		State:    state,
		YourTurn: yourTurn,
		YourSign: entity.SignCross,
	}}
}

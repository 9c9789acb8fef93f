package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
	"context"
	"time"
)

// IRelayService is the single surface the transport layers depend on.
type IRelayService interface {
	Connect(sessionID string, sink contract.EventSink)
	Disconnect(ctx context.Context, sessionID string)
	Register(ctx context.Context, sessionID, identity string)
	JoinRoom(ctx context.Context, sessionID, room string) error
	LeaveRoom(sessionID, room string)
	SendRoomMessage(ctx context.Context, sessionID, room, content string)
	SendPrivateMessage(ctx context.Context, sessionID, to, content string)
	RoomHistory(ctx context.Context, room string) ([]domain.Message, error)
	PrivateHistory(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

type RelayService struct {
	lifecycle           *runtime.Lifecycle
	router              *runtime.Router
	store               contract.MessageStore
	storeTimeout        time.Duration
	roomHistoryLimit    int
	privateHistoryLimit int
}

func NewRelayService(lifecycle *runtime.Lifecycle, router *runtime.Router,
	store contract.MessageStore, storeTimeout time.Duration,
	roomHistoryLimit, privateHistoryLimit int) *RelayService {
	return &RelayService{
		lifecycle:           lifecycle,
		router:              router,
		store:               store,
		storeTimeout:        storeTimeout,
		roomHistoryLimit:    roomHistoryLimit,
		privateHistoryLimit: privateHistoryLimit,
	}
}

func (s *RelayService) Connect(sessionID string, sink contract.EventSink) {
	s.lifecycle.Connect(sessionID, sink)
}

func (s *RelayService) Disconnect(ctx context.Context, sessionID string) {
	s.lifecycle.Disconnect(ctx, sessionID)
}

func (s *RelayService) Register(ctx context.Context, sessionID, identity string) {
	s.lifecycle.Register(ctx, sessionID, identity)
}

func (s *RelayService) JoinRoom(ctx context.Context, sessionID, room string) error {
	return s.router.JoinRoom(ctx, sessionID, room)
}

func (s *RelayService) LeaveRoom(sessionID, room string) {
	s.router.LeaveRoom(sessionID, room)
}

func (s *RelayService) SendRoomMessage(ctx context.Context, sessionID, room, content string) {
	s.router.SendRoomMessage(ctx, sessionID, room, content)
}

func (s *RelayService) SendPrivateMessage(ctx context.Context, sessionID, to, content string) {
	s.router.SendPrivateMessage(ctx, sessionID, to, content)
}

// RoomHistory serves the read-only query surface, bounded like every other
// store call.
func (s *RelayService) RoomHistory(ctx context.Context, room string) ([]domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.QueryRoom(qctx, room, s.roomHistoryLimit)
}

func (s *RelayService) PrivateHistory(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.QueryBetween(qctx, userA, userB, s.privateHistoryLimit)
}

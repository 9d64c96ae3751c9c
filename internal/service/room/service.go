package room

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/pkg/roomcode"
)

type iRegistry interface {
	Reserve(ctx context.Context, code string) error
	Refresh(ctx context.Context, code string) error
	Release(ctx context.Context, code string) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, memberId string) error
	RemoveByMemberId(memberId string) (*websocket.Conn, error)
	RemoveByConn(conn *websocket.Conn) (string, error)
	GetConn(memberId string) (*websocket.Conn, error)
}

type iMediaRepo interface {
	Save(mediaId string, src io.Reader) (int64, error)
	Path(mediaId string) (string, error)
	Remove(mediaId string) error
}

type iCodeGenerator interface {
	Generate() string
}

type Config struct {
	Secret         string
	MembersLimit   int
	DriftTolerance time.Duration
	CodeAttempts   int
}

type service struct {
	registry  iRegistry
	connRepo  iConnRepo
	mediaRepo iMediaRepo
	generator iCodeGenerator
	logger    *slog.Logger

	secret         string
	membersLimit   int
	driftTolerance time.Duration
	codeAttempts   int

	mu    sync.RWMutex
	rooms map[string]*session
}

func NewService(registry iRegistry, connRepo iConnRepo, mediaRepo iMediaRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		registry:       registry,
		connRepo:       connRepo,
		mediaRepo:      mediaRepo,
		generator:      roomcode.NewGenerator(),
		logger:         logger,
		secret:         cfg.Secret,
		membersLimit:   cfg.MembersLimit,
		driftTolerance: cfg.DriftTolerance,
		codeAttempts:   cfg.CodeAttempts,
		rooms:          make(map[string]*session),
	}
}

func (s *service) getSession(code string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return sess, nil
}

func (s *service) addSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[sess.state.room.Code] = sess
}

func (s *service) removeSession(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, code)
}

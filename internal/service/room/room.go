package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository/registry"
	"github.com/cinesync/server/pkg/roomcode"
)

type CreateRoomParams struct {
	Username string
}

type CreateRoomResponse struct {
	RoomCode  string
	MemberId  string
	AuthToken string
	CreatedAt time.Time
}

// CreateRoom reserves a fresh room code, spawns the room's session goroutine
// with the creator as host, and returns a connect token for attaching a
// websocket.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return CreateRoomResponse{}, ErrInvalidName
	}

	var code string
	reserved := false
	for i := 0; i < s.codeAttempts; i++ {
		code = s.generator.Generate()
		err := s.registry.Reserve(ctx, code)
		if err == nil {
			reserved = true
			break
		}
		if !errors.Is(err, registry.ErrCodeTaken) {
			return CreateRoomResponse{}, fmt.Errorf("failed to reserve room code: %w", err)
		}
	}
	if !reserved {
		return CreateRoomResponse{}, ErrNoFreeCode
	}

	memberId := uuid.NewString()
	authToken, err := s.generateAuthToken(memberId, code)
	if err != nil {
		if releaseErr := s.registry.Release(ctx, code); releaseErr != nil {
			s.logger.InfoContext(ctx, "failed to release room code", "room_code", code, "error", releaseErr)
		}
		return CreateRoomResponse{}, fmt.Errorf("failed to generate auth token: %w", err)
	}

	sess := newSession(s, code, Member{
		Id:       memberId,
		Username: username,
		IsHost:   true,
	})
	s.addSession(sess)
	go sess.run()

	s.logger.InfoContext(ctx, "room created", "room_code", code, "member_id", memberId)

	return CreateRoomResponse{
		RoomCode:  code,
		MemberId:  memberId,
		AuthToken: authToken,
		CreatedAt: sess.state.room.CreatedAt,
	}, nil
}

type JoinRoomParams struct {
	Username string
	RoomCode string
}

type JoinRoomResponse struct {
	JoinedMember Member
	Members      []Member
	AuthToken    string
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return JoinRoomResponse{}, ErrInvalidName
	}

	if !roomcode.Validate(params.RoomCode) {
		return JoinRoomResponse{}, ErrInvalidCode
	}

	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	memberId := uuid.NewString()
	authToken, err := s.generateAuthToken(memberId, params.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to generate auth token: %w", err)
	}

	var resp JoinRoomResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if len(st.members) >= s.membersLimit {
			return nil, ErrRoomFull
		}

		guest := Member{
			Id:       memberId,
			Username: username,
			IsHost:   false,
		}
		if err := st.addMember(guest); err != nil {
			return nil, err
		}

		resp.JoinedMember = guest
		resp.Members = st.membersCopy()

		return []event{broadcastEvent("MEMBER_JOINED", map[string]any{
			"joined_member": guest,
			"members":       resp.Members,
		})}, nil
	}); err != nil {
		return JoinRoomResponse{}, err
	}

	resp.AuthToken = authToken

	s.logger.InfoContext(ctx, "member joined", "room_code", params.RoomCode, "member_id", memberId)

	return resp, nil
}

type LeaveRoomParams struct {
	MemberId string
	RoomCode string
}

type LeaveRoomResponse struct {
	IsRoomClosed bool
}

// LeaveRoom removes the member from the room. A leaving host closes the
// whole room; there is no successor election. Leaving a room that is already
// gone, or that the member already left, is a no-op.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return LeaveRoomResponse{}, nil
	}

	var resp LeaveRoomResponse
	err = sess.do(ctx, func(st *state) ([]event, error) {
		m, ok := st.findMember(params.MemberId)
		if !ok {
			return nil, nil
		}

		if m.IsHost {
			st.closed = true
			resp.IsRoomClosed = true

			return []event{broadcastEvent("ROOM_CLOSED", map[string]any{
				"room_code": st.room.Code,
			})}, nil
		}

		st.removeMember(params.MemberId)
		if conn, err := s.connRepo.RemoveByMemberId(params.MemberId); err == nil && conn.NetConn() != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "left room"),
				time.Now().Add(writeTimeout))
			conn.Close()
		}

		return []event{broadcastEvent("MEMBER_LEFT", map[string]any{
			"left_member_id": params.MemberId,
			"members":        st.membersCopy(),
		})}, nil
	})
	if errors.Is(err, ErrRoomNotFound) {
		// room closed concurrently; leaving is still a no-op
		return LeaveRoomResponse{}, nil
	}
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	return resp, nil
}

type ConnectMemberParams struct {
	Conn     *websocket.Conn
	MemberId string
	RoomCode string
}

// ConnectMember attaches a websocket connection to the member's room and
// delivers the full state snapshot over it.
func (s *service) ConnectMember(ctx context.Context, params *ConnectMemberParams) error {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return err
	}

	return sess.do(ctx, func(st *state) ([]event, error) {
		if _, ok := st.findMember(params.MemberId); !ok {
			return nil, ErrMemberNotFound
		}

		if err := s.connRepo.Add(params.Conn, params.MemberId); err != nil {
			return nil, fmt.Errorf("failed to add conn: %w", err)
		}

		return []event{unicastEvent(params.MemberId, "ROOM_STATE", st.snapshot())}, nil
	})
}

type GetSnapshotParams struct {
	RoomCode string
}

func (s *service) GetSnapshot(ctx context.Context, params *GetSnapshotParams) (Snapshot, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		snap = st.snapshot()
		return nil, nil
	}); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

type KeepAliveParams struct {
	MemberId string
	RoomCode string
}

// KeepAlive extends the room's code reservation on behalf of one of its
// members. A reservation that expired while the room was still alive is
// re-reserved.
func (s *service) KeepAlive(ctx context.Context, params *KeepAliveParams) error {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return err
	}

	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if _, ok := st.findMember(params.MemberId); !ok {
			return nil, ErrMemberNotFound
		}

		return nil, nil
	}); err != nil {
		return err
	}

	if err := s.registry.Refresh(ctx, params.RoomCode); err != nil {
		if !errors.Is(err, registry.ErrCodeNotFound) {
			return fmt.Errorf("failed to refresh room code: %w", err)
		}

		if err := s.registry.Reserve(ctx, params.RoomCode); err != nil {
			return fmt.Errorf("failed to re-reserve room code: %w", err)
		}
	}

	return nil
}

type NotifyErrorParams struct {
	MemberId string
	RoomCode string
	Code     string
	Message  string
}

// NotifyError delivers an ERROR message to a single member through the
// room's event path. Writes to a member's connection happen only on the
// session goroutine, so an error reply can never interleave with a
// concurrent broadcast on the same connection.
func (s *service) NotifyError(ctx context.Context, params *NotifyErrorParams) error {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return err
	}

	return sess.do(ctx, func(st *state) ([]event, error) {
		return []event{unicastEvent(params.MemberId, "ERROR", map[string]any{
			"code":    params.Code,
			"message": params.Message,
		})}, nil
	})
}

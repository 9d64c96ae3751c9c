package room

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Output is the envelope written to member connections.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// event is a pending write produced by a command. An empty toMemberId means
// broadcast to every member of the room.
type event struct {
	toMemberId string
	output     Output
}

func broadcastEvent(outputType string, payload any) event {
	return event{output: Output{Type: outputType, Payload: payload}}
}

func unicastEvent(memberId, outputType string, payload any) event {
	return event{toMemberId: memberId, output: Output{Type: outputType, Payload: payload}}
}

// state is a room's entire mutable state. It is owned by the session's
// goroutine; nothing touches it from outside a submitted command.
type state struct {
	room          Room
	members       []Member
	messages      []Message
	nextMessageId int64
	player        Player
	closed        bool
}

func (st *state) findMember(memberId string) (Member, bool) {
	for _, m := range st.members {
		if m.Id == memberId {
			return m, true
		}
	}

	return Member{}, false
}

func (st *state) isHost(memberId string) bool {
	m, ok := st.findMember(memberId)
	return ok && m.IsHost
}

// addMember appends m in insertion order. A room has at most one host; the
// check runs on every roster mutation, not only where a violation looks
// possible.
func (st *state) addMember(m Member) error {
	if m.IsHost {
		for _, existing := range st.members {
			if existing.IsHost {
				return errors.New("room already has a host")
			}
		}
	}

	st.members = append(st.members, m)

	return nil
}

func (st *state) removeMember(memberId string) {
	for i, m := range st.members {
		if m.Id == memberId {
			st.members = append(st.members[:i], st.members[i+1:]...)
			return
		}
	}
}

func (st *state) membersCopy() []Member {
	members := make([]Member, len(st.members))
	copy(members, st.members)
	return members
}

func (st *state) snapshot() Snapshot {
	messages := make([]Message, len(st.messages))
	copy(messages, st.messages)

	return Snapshot{
		Room:     st.room,
		Members:  st.membersCopy(),
		Messages: messages,
		Player:   st.player,
	}
}

// command is one submitted mutation plus the channel its caller waits on.
type command struct {
	fn   func(*state) ([]event, error)
	err  error
	done chan struct{}
}

// session is the actor owning one room. All mutations are funneled through
// cmds and applied by run in arrival order, so every member observes chat
// messages and playback transitions in the same total order.
type session struct {
	svc     *service
	state   state
	cmds    chan *command
	closing chan struct{}
}

func newSession(svc *service, code string, host Member) *session {
	return &session{
		svc: svc,
		state: state{
			room: Room{
				Code:      code,
				CreatedAt: time.Now(),
			},
			members: []Member{host},
			player:  Player{},
		},
		cmds:    make(chan *command),
		closing: make(chan struct{}),
	}
}

func (s *session) run() {
	for cmd := range s.cmds {
		events, err := cmd.fn(&s.state)
		s.emit(events)

		// teardown completes before the closing command's caller is
		// released, so "leave closed the room" is observable on return
		if s.state.closed {
			s.teardown()
		}

		cmd.err = err
		close(cmd.done)

		if s.state.closed {
			return
		}
	}
}

// do submits fn to the session goroutine and waits for it to be applied.
// It returns ErrRoomNotFound if the room is torn down before the command is
// accepted.
func (s *session) do(ctx context.Context, fn func(*state) ([]event, error)) error {
	cmd := &command{
		fn:   fn,
		done: make(chan struct{}),
	}

	select {
	case s.cmds <- cmd:
	case <-s.closing:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	// cmds is unbuffered, so an accepted command always runs
	<-cmd.done

	return cmd.err
}

func (s *session) emit(events []event) {
	for _, e := range events {
		if e.toMemberId != "" {
			s.writeToMember(e.toMemberId, e.output)
			continue
		}

		for _, m := range s.state.members {
			s.writeToMember(m.Id, e.output)
		}
	}
}

func (s *session) writeToMember(memberId string, output Output) {
	conn, err := s.svc.connRepo.GetConn(memberId)
	if err != nil {
		// member has no attached connection yet
		return
	}

	// stub conns have no underlying net.Conn
	if conn.NetConn() == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(output); err != nil {
		s.svc.logger.Info("failed to write to conn",
			"room_code", s.state.room.Code,
			"member_id", memberId,
			"error", err,
		)
	}
}

// teardown runs on the session goroutine after the closing command was
// applied. It closes member connections, releases the held media file and
// the room code reservation, and unregisters the room.
func (s *session) teardown() {
	close(s.closing)

	for _, m := range s.state.members {
		conn, err := s.svc.connRepo.RemoveByMemberId(m.Id)
		if err != nil || conn.NetConn() == nil {
			continue
		}

		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"),
			time.Now().Add(writeTimeout))
		conn.Close()
	}

	if media := s.state.player.Media; media != nil {
		if err := s.svc.mediaRepo.Remove(media.Id); err != nil {
			s.svc.logger.Info("failed to remove media file", "media_id", media.Id, "error", err)
		}
		s.state.player.Media = nil
	}

	s.svc.removeSession(s.state.room.Code)

	if err := s.svc.registry.Release(context.Background(), s.state.room.Code); err != nil {
		s.svc.logger.Info("failed to release room code", "room_code", s.state.room.Code, "error", err)
	}

	s.svc.logger.Info("room closed", "room_code", s.state.room.Code)
}

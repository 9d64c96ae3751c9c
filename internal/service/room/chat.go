package room

import (
	"context"
	"strings"
	"time"
)

type SendMessageParams struct {
	SenderId string
	RoomCode string
	Text     string
}

type SendMessageResponse struct {
	Message Message
}

// SendMessage appends a chat message to the room's log. Ids are strictly
// increasing in append order; the log is immutable until room teardown
// discards it whole.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return SendMessageResponse{}, ErrEmptyMessage
	}

	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return SendMessageResponse{}, err
	}

	var resp SendMessageResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		sender, ok := st.findMember(params.SenderId)
		if !ok {
			return nil, ErrMemberNotFound
		}

		st.nextMessageId++
		msg := Message{
			Id:        st.nextMessageId,
			Sender:    sender.Username,
			Text:      text,
			Timestamp: time.Now(),
		}
		st.messages = append(st.messages, msg)
		resp.Message = msg

		return []event{broadcastEvent("MESSAGE_SENT", map[string]any{
			"message": msg,
		})}, nil
	}); err != nil {
		return SendMessageResponse{}, err
	}

	return resp, nil
}

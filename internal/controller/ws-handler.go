package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/ctxlogger"
	"github.com/cinesync/server/pkg/rest"
)

type EmptyInput struct{}

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	claims, err := c.roomService.ParseAuthToken(r.URL.Query().Get("token"))
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid token"})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	ctx := r.Context()
	ctx = context.WithValue(ctx, roomCodeCtxKey, claims.RoomCode)
	ctx = context.WithValue(ctx, memberIdCtxKey, claims.MemberId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", claims.RoomCode))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("member_id", claims.MemberId))

	if err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		Conn:     conn,
		MemberId: claims.MemberId,
		RoomCode: claims.RoomCode,
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to connect member", "error", err)
		conn.Close()
		return
	}

	if err := c.getWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	// connection gone means the member left, however it ended
	if _, err := c.roomService.LeaveRoom(context.WithoutCancel(ctx), &room.LeaveRoomParams{
		MemberId: claims.MemberId,
		RoomCode: claims.RoomCode,
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to leave room", "error", err)
	}
}

func (c *controller) handleAlive(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return c.roomService.KeepAlive(ctx, &room.KeepAliveParams{
		MemberId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	})
}

type SendMessageInput struct {
	Text string `json:"text"`
}

func (c *controller) handleSendMessage(ctx context.Context, _ *websocket.Conn, input SendMessageInput) error {
	if _, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
		Text:     input.Text,
	}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (c *controller) handlePlay(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.PlayVideo(ctx, &room.PlayVideoParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to play video: %w", err)
	}

	return nil
}

func (c *controller) handlePause(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.PauseVideo(ctx, &room.PauseVideoParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to pause video: %w", err)
	}

	return nil
}

type SeekInput struct {
	Time float64 `json:"time"`
}

func (c *controller) handleSeek(ctx context.Context, _ *websocket.Conn, input SeekInput) error {
	if _, err := c.roomService.Seek(ctx, &room.SeekParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
		Time:     input.Time,
	}); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

type ReportDurationInput struct {
	Duration float64 `json:"duration"`
}

func (c *controller) handleReportDuration(ctx context.Context, _ *websocket.Conn, input ReportDurationInput) error {
	if _, err := c.roomService.ReportDuration(ctx, &room.ReportDurationParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
		Duration: input.Duration,
	}); err != nil {
		return fmt.Errorf("failed to report duration: %w", err)
	}

	return nil
}

type PlayerTickInput struct {
	CurrentTime float64 `json:"current_time"`
}

func (c *controller) handlePlayerTick(ctx context.Context, _ *websocket.Conn, input PlayerTickInput) error {
	if _, err := c.roomService.Tick(ctx, &room.TickParams{
		SenderId:    c.getMemberIdFromCtx(ctx),
		RoomCode:    c.getRoomCodeFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	}); err != nil {
		return fmt.Errorf("failed to tick: %w", err)
	}

	return nil
}

func (c *controller) handleLeaveRoom(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		MemberId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

func (c *controller) wsErrorHandler(ctx context.Context, _ *websocket.Conn, err error) {
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, room.ErrPermissionDenied):
		code = "PERMISSION_DENIED"
	case errors.Is(err, room.ErrEmptyMessage):
		code = "EMPTY_MESSAGE"
	case errors.Is(err, room.ErrRoomNotFound):
		code = "ROOM_NOT_FOUND"
	case errors.Is(err, room.ErrMemberNotFound):
		code = "MEMBER_NOT_FOUND"
	}

	c.logger.InfoContext(ctx, "websocket handler error", "error", err)

	// the session goroutine is the connection's only data writer; writing
	// the reply from here would race its broadcasts
	if notifyErr := c.roomService.NotifyError(ctx, &room.NotifyErrorParams{
		MemberId: c.getMemberIdFromCtx(ctx),
		RoomCode: c.getRoomCodeFromCtx(ctx),
		Code:     code,
		Message:  err.Error(),
	}); notifyErr != nil {
		c.logger.DebugContext(ctx, "failed to deliver error message", "error", notifyErr)
	}
}

package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/validator"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	ConnectMember(context.Context, *room.ConnectMemberParams) error
	KeepAlive(context.Context, *room.KeepAliveParams) error
	NotifyError(context.Context, *room.NotifyErrorParams) error
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	PlayVideo(context.Context, *room.PlayVideoParams) (room.PlayVideoResponse, error)
	PauseVideo(context.Context, *room.PauseVideoParams) (room.PauseVideoResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	ReportDuration(context.Context, *room.ReportDurationParams) (room.ReportDurationResponse, error)
	Tick(context.Context, *room.TickParams) (room.TickResponse, error)
	UploadMedia(context.Context, *room.UploadMediaParams) (room.UploadMediaResponse, error)
	MediaFilePath(mediaId string) (string, error)
	ParseAuthToken(token string) (*room.Claims, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}

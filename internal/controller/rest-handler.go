package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/rest"
	"github.com/cinesync/server/pkg/roomcode"
)

const maxUploadBytes = 1 << 30

func (c *controller) healthz(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
}

type createRoomInput struct {
	Username string `json:"username" validate:"required,max=32"`
}

type createRoomResponse struct {
	RoomCode     string `json:"room_code"`
	MemberId     string `json:"member_id"`
	ConnectToken string `json:"connect_token"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Username: input.Username,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to create room", "error", err)
		switch {
		case errors.Is(err, room.ErrInvalidName):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid name"})
		case errors.Is(err, room.ErrNoFreeCode):
			rest.WriteJSON(w, http.StatusServiceUnavailable, rest.Envelope{"error": "no free room code"})
		default:
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResponse{
		RoomCode:     resp.RoomCode,
		MemberId:     resp.MemberId,
		ConnectToken: resp.AuthToken,
	}})
}

type joinRoomInput struct {
	Username string `json:"username" validate:"required,max=32"`
}

type joinRoomResponse struct {
	MemberId     string        `json:"member_id"`
	Members      []room.Member `json:"members"`
	ConnectToken string        `json:"connect_token"`
}

func (c *controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "room-code")
	if !roomcode.Validate(code) {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid room code"})
		return
	}

	var input joinRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		Username: input.Username,
		RoomCode: code,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to join room", "error", err)
		switch {
		case errors.Is(err, room.ErrInvalidName), errors.Is(err, room.ErrInvalidCode):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		case errors.Is(err, room.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, room.ErrRoomFull):
			rest.WriteJSON(w, http.StatusConflict, rest.Envelope{"error": "room is full"})
		default:
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": joinRoomResponse{
		MemberId:     resp.JoinedMember.Id,
		Members:      resp.Members,
		ConnectToken: resp.AuthToken,
	}})
}

type uploadMediaResponse struct {
	MediaId string `json:"media_id"`
	URL     string `json:"url"`
}

func (c *controller) uploadMedia(w http.ResponseWriter, r *http.Request) {
	claims, err := c.bearerClaims(r)
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid token"})
		return
	}

	code := chi.URLParam(r, "room-code")
	if claims.RoomCode != code {
		rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "token is for another room"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("video")
	if err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": "missing video file"})
		return
	}
	defer file.Close()

	resp, err := c.roomService.UploadMedia(r.Context(), &room.UploadMediaParams{
		SenderId:    claims.MemberId,
		RoomCode:    code,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Src:         file,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upload media", "error", err)
		switch {
		case errors.Is(err, room.ErrMediaRejected):
			rest.WriteJSON(w, http.StatusUnsupportedMediaType, rest.Envelope{"error": "only video files are accepted"})
		case errors.Is(err, room.ErrPermissionDenied):
			rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "only the host can load media"})
		case errors.Is(err, room.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		default:
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": uploadMediaResponse{
		MediaId: resp.Media.Id,
		URL:     resp.Media.URL,
	}})
}

func (c *controller) serveMedia(w http.ResponseWriter, r *http.Request) {
	path, err := c.roomService.MediaFilePath(chi.URLParam(r, "media-id"))
	if err != nil {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "media not found"})
		return
	}

	http.ServeFile(w, r, path)
}

func (c *controller) bearerClaims(r *http.Request) (*room.Claims, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	return c.roomService.ParseAuthToken(token)
}

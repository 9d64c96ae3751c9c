package room

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cinesync/server/internal/repository/media"
)

type UploadMediaParams struct {
	SenderId    string
	RoomCode    string
	Name        string
	ContentType string
	Src         io.Reader
}

type UploadMediaResponse struct {
	Media Media
}

// UploadMedia stores the uploaded file and loads it into the room's player,
// resetting playback state. The previously loaded file, if any, is removed
// when it is replaced; a rejected upload never leaves a file behind.
func (s *service) UploadMedia(ctx context.Context, params *UploadMediaParams) (UploadMediaResponse, error) {
	if !strings.HasPrefix(params.ContentType, "video/") {
		return UploadMediaResponse{}, ErrMediaRejected
	}

	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return UploadMediaResponse{}, err
	}

	mediaId := uuid.NewString()
	size, err := s.mediaRepo.Save(mediaId, params.Src)
	if err != nil {
		return UploadMediaResponse{}, fmt.Errorf("failed to save media: %w", err)
	}

	loaded := Media{
		Id:          mediaId,
		Name:        params.Name,
		ContentType: params.ContentType,
		Size:        size,
		URL:         "/api/media/" + mediaId,
	}

	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if !st.isHost(params.SenderId) {
			return nil, ErrPermissionDenied
		}

		old := st.player.Media
		st.player = Player{
			Media:     &loaded,
			UpdatedAt: time.Now().Unix(),
		}

		if old != nil {
			if err := s.mediaRepo.Remove(old.Id); err != nil {
				s.logger.InfoContext(ctx, "failed to remove replaced media", "media_id", old.Id, "error", err)
			}
		}

		return []event{playerUpdatedEvent(st)}, nil
	}); err != nil {
		// the upload never made it into the room
		if removeErr := s.mediaRepo.Remove(mediaId); removeErr != nil {
			s.logger.InfoContext(ctx, "failed to remove orphan media", "media_id", mediaId, "error", removeErr)
		}
		return UploadMediaResponse{}, err
	}

	s.logger.InfoContext(ctx, "media loaded", "room_code", params.RoomCode, "media_id", mediaId)

	return UploadMediaResponse{Media: loaded}, nil
}

// MediaFilePath resolves a media id to the stored file's path for serving.
func (s *service) MediaFilePath(mediaId string) (string, error) {
	if err := uuid.Validate(mediaId); err != nil {
		return "", ErrMediaNotFound
	}

	path, err := s.mediaRepo.Path(mediaId)
	if err != nil {
		if errors.Is(err, media.ErrFileNotFound) {
			return "", ErrMediaNotFound
		}
		return "", err
	}

	return path, nil
}

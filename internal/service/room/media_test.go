package room

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaFileExists(t *testing.T, dir, mediaId string) bool {
	t.Helper()

	_, err := os.Stat(filepath.Join(dir, mediaId))
	if err == nil {
		return true
	}
	require.True(t, os.IsNotExist(err))

	return false
}

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	resp, err := env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		Name:        "movie.mp4",
		ContentType: "video/mp4",
		Src:         strings.NewReader("fake video bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "movie.mp4", resp.Media.Name)
	assert.Equal(t, int64(len("fake video bytes")), resp.Media.Size)
	assert.Equal(t, "/api/media/"+resp.Media.Id, resp.Media.URL)
	assert.True(t, mediaFileExists(t, env.mediaDir, resp.Media.Id))

	path, err := env.svc.MediaFilePath(resp.Media.Id)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.mediaDir, resp.Media.Id), path)

	snap, err := env.svc.GetSnapshot(ctx, &GetSnapshotParams{RoomCode: created.RoomCode})
	require.NoError(t, err)
	require.NotNil(t, snap.Player.Media)
	assert.Equal(t, resp.Media.Id, snap.Player.Media.Id)
	assert.False(t, snap.Player.IsPlaying, "loading media resets playback")
	assert.Equal(t, float64(0), snap.Player.CurrentTime)
}

func TestUploadMediaReplacesOld(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	first, err := env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		Name:        "first.mp4",
		ContentType: "video/mp4",
		Src:         strings.NewReader("first"),
	})
	require.NoError(t, err)

	second, err := env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		Name:        "second.webm",
		ContentType: "video/webm",
		Src:         strings.NewReader("second"),
	})
	require.NoError(t, err)

	assert.False(t, mediaFileExists(t, env.mediaDir, first.Media.Id), "replaced file must be removed")
	assert.True(t, mediaFileExists(t, env.mediaDir, second.Media.Id))

	_, err = env.svc.MediaFilePath(first.Media.Id)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestUploadMediaRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")
	joined := env.joinRoom(t, "guest", created.RoomCode)

	_, err := env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		Name:        "notes.txt",
		ContentType: "text/plain",
		Src:         strings.NewReader("not a video"),
	})
	assert.ErrorIs(t, err, ErrMediaRejected)

	_, err = env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    joined.JoinedMember.Id,
		RoomCode:    created.RoomCode,
		Name:        "guest.mp4",
		ContentType: "video/mp4",
		Src:         strings.NewReader("guest upload"),
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	entries, err := os.ReadDir(env.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not leave files behind")
}

func TestMediaRemovedOnRoomClose(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	resp, err := env.svc.UploadMedia(ctx, &UploadMediaParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		Name:        "movie.mp4",
		ContentType: "video/mp4",
		Src:         strings.NewReader("fake video bytes"),
	})
	require.NoError(t, err)

	leaveResp, err := env.svc.LeaveRoom(ctx, &LeaveRoomParams{
		MemberId: created.MemberId,
		RoomCode: created.RoomCode,
	})
	require.NoError(t, err)
	require.True(t, leaveResp.IsRoomClosed)

	assert.False(t, mediaFileExists(t, env.mediaDir, resp.Media.Id), "closing the room must release the media file")
}

func TestMediaFilePathNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.MediaFilePath("../../etc/passwd")
	assert.ErrorIs(t, err, ErrMediaNotFound)

	_, err = env.svc.MediaFilePath("0b0482f1-6b4f-4f25-a8d9-03f95a3c1d0f")
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayPauseHostOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")
	joined := env.joinRoom(t, "guest", created.RoomCode)

	_, err := env.svc.PlayVideo(ctx, &PlayVideoParams{
		SenderId: joined.JoinedMember.Id,
		RoomCode: created.RoomCode,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.svc.PauseVideo(ctx, &PauseVideoParams{
		SenderId: joined.JoinedMember.Id,
		RoomCode: created.RoomCode,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	playResp, err := env.svc.PlayVideo(ctx, &PlayVideoParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
	})
	require.NoError(t, err)
	assert.True(t, playResp.Player.IsPlaying)

	// playing an already playing room is a no-op
	playResp, err = env.svc.PlayVideo(ctx, &PlayVideoParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
	})
	require.NoError(t, err)
	assert.True(t, playResp.Player.IsPlaying)

	pauseResp, err := env.svc.PauseVideo(ctx, &PauseVideoParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
	})
	require.NoError(t, err)
	assert.False(t, pauseResp.Player.IsPlaying)
}

func TestSeekClamping(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	_, err := env.svc.ReportDuration(ctx, &ReportDurationParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
		Duration: 120,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		time     float64
		expected float64
	}{
		{"within bounds", 60, 60},
		{"negative clamps to zero", -5, 0},
		{"past duration clamps to duration", 500, 120},
		{"exactly duration", 120, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.svc.Seek(ctx, &SeekParams{
				SenderId: created.MemberId,
				RoomCode: created.RoomCode,
				Time:     tt.time,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.Player.CurrentTime)
		})
	}
}

func TestSeekUnknownDuration(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	// duration unknown: only the lower bound applies
	resp, err := env.svc.Seek(ctx, &SeekParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
		Time:     9999,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(9999), resp.Player.CurrentTime)
}

func TestReportDurationCorrectsPosition(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")
	joined := env.joinRoom(t, "guest", created.RoomCode)

	_, err := env.svc.ReportDuration(ctx, &ReportDurationParams{
		SenderId: joined.JoinedMember.Id,
		RoomCode: created.RoomCode,
		Duration: 100,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.svc.Seek(ctx, &SeekParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
		Time:     300,
	})
	require.NoError(t, err)

	resp, err := env.svc.ReportDuration(ctx, &ReportDurationParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
		Duration: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), resp.Player.Duration)
	assert.Equal(t, float64(100), resp.Player.CurrentTime, "position past the new duration is corrected")

	resp, err = env.svc.ReportDuration(ctx, &ReportDurationParams{
		SenderId: created.MemberId,
		RoomCode: created.RoomCode,
		Duration: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.Player.Duration)
}

func TestTickHostIsAuthoritative(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")

	resp, err := env.svc.Tick(ctx, &TickParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		CurrentTime: 42.5,
	})
	require.NoError(t, err)
	assert.False(t, resp.Synced)
	assert.Equal(t, 42.5, resp.Player.CurrentTime)

	snap, err := env.svc.GetSnapshot(ctx, &GetSnapshotParams{RoomCode: created.RoomCode})
	require.NoError(t, err)
	assert.Equal(t, 42.5, snap.Player.CurrentTime)
}

func TestTickFollowerDrift(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created := env.createRoom(t, "host")
	joined := env.joinRoom(t, "guest", created.RoomCode)

	_, err := env.svc.Tick(ctx, &TickParams{
		SenderId:    created.MemberId,
		RoomCode:    created.RoomCode,
		CurrentTime: 100,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		local  float64
		synced bool
	}{
		{"in lockstep", 100, false},
		{"behind within tolerance", 99.5, false},
		{"ahead within tolerance", 100.5, false},
		{"exactly at tolerance", 101, false},
		{"behind beyond tolerance", 98.5, true},
		{"ahead beyond tolerance", 101.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.svc.Tick(ctx, &TickParams{
				SenderId:    joined.JoinedMember.Id,
				RoomCode:    created.RoomCode,
				CurrentTime: tt.local,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.synced, resp.Synced)
			assert.Equal(t, float64(100), resp.Player.CurrentTime, "follower tick must not move the canonical position")
		})
	}
}

func TestTickUnknownMember(t *testing.T) {
	env := newTestEnv(t, nil)

	created := env.createRoom(t, "host")

	_, err := env.svc.Tick(context.Background(), &TickParams{
		SenderId:    "nobody",
		RoomCode:    created.RoomCode,
		CurrentTime: 10,
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

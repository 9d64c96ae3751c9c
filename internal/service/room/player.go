package room

import (
	"context"
	"math"
	"time"
)

func playerUpdatedEvent(st *state) event {
	return broadcastEvent("PLAYER_UPDATED", map[string]any{
		"player": st.player,
	})
}

type PlayVideoParams struct {
	SenderId string
	RoomCode string
}

type PlayVideoResponse struct {
	Player Player
}

// PlayVideo starts playback. Host only; playing an already playing room is a
// no-op, not an error.
func (s *service) PlayVideo(ctx context.Context, params *PlayVideoParams) (PlayVideoResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return PlayVideoResponse{}, err
	}

	var resp PlayVideoResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if !st.isHost(params.SenderId) {
			return nil, ErrPermissionDenied
		}

		if st.player.IsPlaying {
			resp.Player = st.player
			return nil, nil
		}

		st.player.IsPlaying = true
		st.player.UpdatedAt = time.Now().Unix()
		resp.Player = st.player

		return []event{playerUpdatedEvent(st)}, nil
	}); err != nil {
		return PlayVideoResponse{}, err
	}

	return resp, nil
}

type PauseVideoParams struct {
	SenderId string
	RoomCode string
}

type PauseVideoResponse struct {
	Player Player
}

func (s *service) PauseVideo(ctx context.Context, params *PauseVideoParams) (PauseVideoResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return PauseVideoResponse{}, err
	}

	var resp PauseVideoResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if !st.isHost(params.SenderId) {
			return nil, ErrPermissionDenied
		}

		if !st.player.IsPlaying {
			resp.Player = st.player
			return nil, nil
		}

		st.player.IsPlaying = false
		st.player.UpdatedAt = time.Now().Unix()
		resp.Player = st.player

		return []event{playerUpdatedEvent(st)}, nil
	}); err != nil {
		return PauseVideoResponse{}, err
	}

	return resp, nil
}

type SeekParams struct {
	SenderId string
	RoomCode string
	Time     float64
}

type SeekResponse struct {
	Player Player
}

// Seek moves the playback position. The target is clamped to [0, duration]
// when the duration is known, and to [0, inf) otherwise.
func (s *service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return SeekResponse{}, err
	}

	var resp SeekResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if !st.isHost(params.SenderId) {
			return nil, ErrPermissionDenied
		}

		t := params.Time
		if t < 0 {
			t = 0
		}
		if st.player.Duration > 0 && t > st.player.Duration {
			t = st.player.Duration
		}

		st.player.CurrentTime = t
		st.player.UpdatedAt = time.Now().Unix()
		resp.Player = st.player

		return []event{playerUpdatedEvent(st)}, nil
	}); err != nil {
		return SeekResponse{}, err
	}

	return resp, nil
}

type ReportDurationParams struct {
	SenderId string
	RoomCode string
	Duration float64
}

type ReportDurationResponse struct {
	Player Player
}

// ReportDuration records the media duration observed by the host's player,
// the source of truth for media metadata. A position past the new duration
// is corrected, not rejected.
func (s *service) ReportDuration(ctx context.Context, params *ReportDurationParams) (ReportDurationResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return ReportDurationResponse{}, err
	}

	var resp ReportDurationResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		if !st.isHost(params.SenderId) {
			return nil, ErrPermissionDenied
		}

		d := params.Duration
		if d < 0 {
			d = 0
		}

		st.player.Duration = d
		if d > 0 && st.player.CurrentTime > d {
			st.player.CurrentTime = d
		}
		st.player.UpdatedAt = time.Now().Unix()
		resp.Player = st.player

		return []event{playerUpdatedEvent(st)}, nil
	}); err != nil {
		return ReportDurationResponse{}, err
	}

	return resp, nil
}

type TickParams struct {
	SenderId    string
	RoomCode    string
	CurrentTime float64
}

type TickResponse struct {
	Synced bool
	Player Player
}

// Tick reconciles a member's local playback position against the canonical
// state. The host's position is authoritative and is recorded as the new
// canonical time. A follower drifting more than the tolerance is told to
// snap back via a PLAYER_SYNC message; smaller drift is left alone so
// followers are not constantly micro-seeking.
func (s *service) Tick(ctx context.Context, params *TickParams) (TickResponse, error) {
	sess, err := s.getSession(params.RoomCode)
	if err != nil {
		return TickResponse{}, err
	}

	var resp TickResponse
	if err := sess.do(ctx, func(st *state) ([]event, error) {
		m, ok := st.findMember(params.SenderId)
		if !ok {
			return nil, ErrMemberNotFound
		}

		if m.IsHost {
			t := params.CurrentTime
			if t < 0 {
				t = 0
			}
			if st.player.Duration > 0 && t > st.player.Duration {
				t = st.player.Duration
			}
			st.player.CurrentTime = t
			st.player.UpdatedAt = time.Now().Unix()
			resp.Player = st.player

			return nil, nil
		}

		drift := math.Abs(params.CurrentTime - st.player.CurrentTime)
		resp.Player = st.player
		if drift <= s.driftTolerance.Seconds() {
			return nil, nil
		}

		resp.Synced = true

		return []event{unicastEvent(params.SenderId, "PLAYER_SYNC", map[string]any{
			"player": st.player,
		})}, nil
	}); err != nil {
		return TickResponse{}, err
	}

	return resp, nil
}

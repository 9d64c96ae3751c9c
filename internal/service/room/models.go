package room

import "time"

type Member struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

type Message struct {
	Id        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Media is the room's loaded video: the uploaded file plus the locator
// members stream it from. The underlying file is released when the media is
// replaced or the room is torn down.
type Media struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Player is the host-authoritative playback state. Media == nil means no
// video is loaded. Duration 0 means unknown.
type Player struct {
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Media       *Media  `json:"media"`
	UpdatedAt   int64   `json:"updated_at"`
}

type Room struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the full observable room state delivered to members.
type Snapshot struct {
	Room     Room      `json:"room"`
	Members  []Member  `json:"members"`
	Messages []Message `json:"messages"`
	Player   Player    `json:"player"`
}

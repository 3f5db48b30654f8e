package entity

import "time"

// Session - record of a session provisioned by the game server.
type Session struct {
	ID        string    `json:"id"`
	Players   []*Player `json:"players"`
	GameOver  bool      `json:"game_over"`
	Winner    *string   `json:"winner"`
	Size      int       `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// IsFull - both seats of the session are taken.
func (that *Session) IsFull() bool {
	return len(that.Players) == 2
}

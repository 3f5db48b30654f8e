package entity

const (
	SignEmpty  Sign = ""
	SignCross  Sign = "x"
	SignNaught Sign = "o"
)

// Sign - mark a player puts on the board. An empty sign is a free cell.
type Sign string

func (that Sign) IsEmpty() bool {
	return that == SignEmpty
}

// Opponent - returns the other player's sign.
func (that Sign) Opponent() Sign {
	switch that {
	case SignCross:
		return SignNaught
	case SignNaught:
		return SignCross
	default:
		return SignEmpty
	}
}

// Move - a move at zero-based board coordinates.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Snapshot - full game state as last reported by the game server.
type Snapshot struct {
	You           string    `json:"you,omitempty"`
	State         [][]Sign  `json:"state"`
	YourTurn      bool      `json:"your_turn"`
	YourSign      Sign      `json:"your_sign"`
	GameOver      bool      `json:"game_over"`
	Winner        *Sign     `json:"winner"`
	ActivePlayers []*Player `json:"active_players,omitempty"`
}

// Size - number of rows on the board.
func (that *Snapshot) Size() int {
	return len(that.State)
}

// Cell - returns the sign at the given position, empty when out of range.
func (that *Snapshot) Cell(row, col int) Sign {
	if row < 0 || row >= len(that.State) {
		return SignEmpty
	}
	if col < 0 || col >= len(that.State[row]) {
		return SignEmpty
	}

	return that.State[row][col]
}

// HasWinner - true when the server reported a winning sign.
func (that *Snapshot) HasWinner() bool {
	return that.Winner != nil && !that.Winner.IsEmpty()
}

// Clone - deep copy, stored snapshots never share memory with callers.
func (that *Snapshot) Clone() *Snapshot {
	clone := *that

	if that.State != nil {
		clone.State = make([][]Sign, len(that.State))
		for i, row := range that.State {
			clone.State[i] = append([]Sign(nil), row...)
		}
	}

	if that.Winner != nil {
		winner := *that.Winner
		clone.Winner = &winner
	}

	if that.ActivePlayers != nil {
		clone.ActivePlayers = make([]*Player, len(that.ActivePlayers))
		for i, player := range that.ActivePlayers {
			p := *player
			clone.ActivePlayers[i] = &p
		}
	}

	return &clone
}

// ServerMessage - one inbound record from the game server: either an error report or a full snapshot.
type ServerMessage struct {
	Error string `json:"error,omitempty"`
	Snapshot
}

func (that *ServerMessage) IsError() bool {
	return that.Error != ""
}

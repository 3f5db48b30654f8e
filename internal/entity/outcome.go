package entity

const (
	OutcomeNone Outcome = ""
	OutcomeDraw Outcome = "draw"
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Outcome - end-of-game result from the viewer's point of view.
type Outcome string

// DeriveOutcome - computes the viewer's outcome of a finished game.
func DeriveOutcome(snapshot *Snapshot) Outcome {
	if snapshot == nil || !snapshot.GameOver {
		return OutcomeNone
	}

	if !snapshot.HasWinner() {
		return OutcomeDraw
	}

	if *snapshot.Winner == snapshot.YourSign {
		return OutcomeWin
	}

	return OutcomeLoss
}

func (that Outcome) Text() string {
	switch that {
	case OutcomeDraw:
		return "Draw!"
	case OutcomeWin:
		return "You win!"
	case OutcomeLoss:
		return "You lose!"
	default:
		return ""
	}
}

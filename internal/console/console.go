package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/usecase"
)

// Console - text rendering surface for a game session. It writes the board,
// notifications and the final outcome to out.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify - prints a notification as "[severity] title: description".
func (that *Console) Notify(notification usecase.Notification) {
	that.printf("[%s] %s: %s\n", notification.Severity, notification.Title, notification.Description)
}

// OnState - redraws the board with a status line under it.
func (that *Console) OnState(snapshot *entity.Snapshot) {
	var builder strings.Builder

	builder.WriteString(RenderBoard(snapshot))
	builder.WriteString(statusLine(snapshot))
	builder.WriteByte('\n')

	that.printf("%s", builder.String())
}

func (that *Console) OnConnectivity(connected bool) {
	if connected {
		that.printf("* connected\n")
		return
	}

	that.printf("* disconnected\n")
}

func (that *Console) OnOutcome(outcome entity.Outcome) {
	if text := outcome.Text(); text != "" {
		that.printf("%s\n", text)
	}
}

// Printf - free-form output, serialized with the callbacks.
func (that *Console) Printf(format string, args ...any) {
	that.printf(format, args...)
}

func (that *Console) printf(format string, args ...any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintf(that.out, format, args...)
}

// RenderBoard - the grid with row and column indexes, one line per row.
func RenderBoard(snapshot *entity.Snapshot) string {
	var builder strings.Builder

	size := snapshot.Size()

	builder.WriteString("  ")
	for col := 0; col < size; col++ {
		fmt.Fprintf(&builder, " %d", col)
	}
	builder.WriteByte('\n')

	for row := 0; row < size; row++ {
		fmt.Fprintf(&builder, "%d ", row)
		for col := 0; col < len(snapshot.State[row]); col++ {
			builder.WriteByte(' ')
			builder.WriteString(cellText(snapshot.Cell(row, col)))
		}
		builder.WriteByte('\n')
	}

	return builder.String()
}

func cellText(sign entity.Sign) string {
	if sign.IsEmpty() {
		return "."
	}

	return strings.ToUpper(string(sign))
}

func statusLine(snapshot *entity.Snapshot) string {
	switch {
	case snapshot.GameOver:
		return "game over"
	case snapshot.YourTurn:
		return fmt.Sprintf("your turn (%s)", cellText(snapshot.YourSign))
	default:
		return "waiting for opponent"
	}
}

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

var ErrBadInput = errors.New(`expected "row col"`)

// Mover - the part of a game session the input loop drives.
type Mover interface {
	Move(ctx context.Context, row, col int) error
	CanMove() bool
}

// ReadMoves - reads "row col" lines from in and plays them until EOF, "q" or ctx is done.
// Failed moves are reported by the session itself; only input problems are printed here.
func ReadMoves(ctx context.Context, in io.Reader, session Mover, out *Console) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}

			if quit := handleLine(ctx, line, session, out); quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, line string, session Mover, out *Console) bool {
	line = strings.TrimSpace(line)

	switch line {
	case "":
		return false
	case "q", "quit":
		return true
	}

	row, col, err := ParseMove(line)
	if err != nil {
		out.Printf("%v\n", err)
		return false
	}

	if !session.CanMove() {
		out.Printf("input is disabled right now\n")
		return false
	}

	if err = session.Move(ctx, row, col); errors.Is(err, apperror.ErrInputDisabled) {
		out.Printf("input is disabled right now\n")
	}

	return false
}

// ParseMove - parses "row col" into zero-based coordinates.
func ParseMove(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, ErrBadInput
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil || row < 0 {
		return 0, 0, fmt.Errorf("%w: bad row %q", ErrBadInput, fields[0])
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil || col < 0 {
		return 0, 0, fmt.Errorf("%w: bad column %q", ErrBadInput, fields[1])
	}

	return row, col, nil
}

package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var ErrEmptyMessage = errors.New("empty message")

// JoinURL - builds the join endpoint address for a (session, player) pair.
func JoinURL(baseURL, sessionID, playerID string) string {
	return fmt.Sprintf("%s/sessions/%s/players/%s/join",
		strings.TrimRight(baseURL, "/"), url.PathEscape(sessionID), url.PathEscape(playerID))
}

func encodeMessage(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func decodeMessage(data []byte) (*entity.ServerMessage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var msg entity.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

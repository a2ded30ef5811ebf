package resources

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

const historyPath = "/api/matches"

// HistoryItem is one past match. Values are kept as the backend renders them.
type HistoryItem struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Result   string `json:"result"`
	Opponent string `json:"opponent"`
	Score    string `json:"score"`
}

// History is the read-only list of past matches. A fetch replaces it wholesale.
type History struct {
	state
	caller

	matches []HistoryItem
}

func NewHistory(client *backend.Client, token string, log *zap.Logger) *History {
	return &History{caller: newCaller(client, token, log, "history")}
}

func (h *History) Matches() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.matches)
}

func (h *History) SetMatches(matches []HistoryItem) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.matches = slices.Clone(matches)
}

// FetchMatches is skipped when the history was built without a token.
func (h *History) FetchMatches(ctx context.Context) error {
	if h.token == "" {
		return nil
	}

	h.begin()

	resp, err := h.check(h.client.Get(ctx, historyPath, h.options()))
	if err != nil {
		return h.settle(err, nil)
	}

	var matches []HistoryItem
	found, err := resp.DecodeField("matches", &matches)
	if err != nil {
		return h.settle(invalid(err), nil)
	}

	return h.settle(nil, func() {
		if found {
			h.matches = matches
		}
	})
}

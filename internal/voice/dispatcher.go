package voice

import (
	"sort"
	"strings"
	"time"

	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
)

// LastQueryTTL is how long a session's last free-text query is kept.
const LastQueryTTL = time.Hour

const (
	ActionShowMenu           = "show_menu"
	ActionRequestItemDetails = "request_item_details"
	ActionStartOrder         = "start_order"
	ActionGeneralHelp        = "general_help"
)

type Query struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type Response struct {
	Response  string `json:"response"`
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
}

// LastQueryKey is the store key for a session's most recent voice query.
func LastQueryKey(sessionID string) string {
	return "session:" + sessionID + ":last_query"
}

var priceWords = []string{"price", "cost", "how much"}

// Dispatch classifies a voice query against a fixed keyword rule table.
// It is a pure function: no state is read or written here.
func Dispatch(q Query, m *menu.Menu) Response {
	lower := strings.ToLower(q.Query)

	switch {
	case strings.Contains(lower, "menu"):
		names := make([]string, 0, len(m.Categories))
		for category := range m.Categories {
			names = append(names, category)
		}
		sort.Strings(names)
		return Response{
			Response:  "Here are our menu categories: " + strings.Join(names, ", "),
			Action:    ActionShowMenu,
			SessionID: q.SessionID,
		}
	case containsAny(lower, priceWords):
		return Response{
			Response:  "I can help you with pricing. What specific item are you interested in?",
			Action:    ActionRequestItemDetails,
			SessionID: q.SessionID,
		}
	case strings.Contains(lower, "order"):
		return Response{
			Response:  "I'd be happy to help you place an order. What would you like to start with?",
			Action:    ActionStartOrder,
			SessionID: q.SessionID,
		}
	default:
		return Response{
			Response:  "I'm here to help you with our menu and placing orders. How can I assist you today?",
			Action:    ActionGeneralHelp,
			SessionID: q.SessionID,
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

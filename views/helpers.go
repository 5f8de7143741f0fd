package views

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/spread-pool/internal/service"
)

func teamName(data *service.BracketData, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if t, ok := data.Teams[*id]; ok {
		return t.Name
	}
	return ""
}

func ownerName(data *service.BracketData, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if p, ok := data.Participants[*id]; ok {
		return p.Name
	}
	return ""
}

// FormatSpread renders a line from slot a's side, e.g. "A -3.5" when slot a
// is favored by 3.5.
func FormatSpread(spread *float64) string {
	switch {
	case spread == nil:
		return "no line"
	case *spread == 0:
		return "pick'em"
	case *spread > 0:
		return fmt.Sprintf("A -%s", strconv.FormatFloat(*spread, 'f', -1, 64))
	default:
		return fmt.Sprintf("B -%s", strconv.FormatFloat(-*spread, 'f', -1, 64))
	}
}

func formatScore(score *int) string {
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}

func orTBD(s string) string {
	if s == "" {
		return "TBD"
	}
	return s
}

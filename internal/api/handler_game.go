package api

import (
	"errors"
	"net/http"

	"github.com/thirdeyegames/coinflip/internal/game"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
	"github.com/thirdeyegames/coinflip/internal/services/wager"
)

// CreditsHandler handles GET /api/credits
func (h *HandlerProvider) CreditsHandler(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	credits, err := h.wagers.GetCredits(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"credits": credits,
	})
}

type playRequest struct {
	BetAmount  int64  `json:"betAmount"`
	Prediction string `json:"prediction"`
}

// PlayHandler handles POST /api/play
func (h *HandlerProvider) PlayHandler(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req playRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prediction, err := game.ParseOutcome(req.Prediction)
	if err != nil {
		writeRejection(w, "prediction must be Heads or Tails")
		return
	}

	res, err := h.wagers.PlaceWager(r.Context(), ident.UserID, req.BetAmount, prediction)
	if err != nil {
		switch {
		case errors.Is(err, wager.ErrBetTooSmall):
			writeRejection(w, "bet is below the minimum stake")
		case errors.Is(err, users.ErrInsufficientCredits):
			writeRejection(w, "not enough credits")
		case errors.Is(err, wager.ErrNotVerified):
			writeRejection(w, "account not verified")
		case errors.Is(err, users.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "not authenticated")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"outcome": res.Outcome,
		"won":     res.Won,
		"credits": res.Credits,
	})
}

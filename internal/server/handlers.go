package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/pricing"
	"github.com/xtding233/sticker-gacha/internal/session"
)

const maxBodyBytes = 1 << 16

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	Balance *int `json:"balance" validate:"omitempty,gte=0,lte=100000000"`
}

type SessionResponse struct {
	SessionID   string `json:"session_id"`
	Balance     int    `json:"balance"`
	GameVersion string `json:"game_version"`
}

type OpenPackResponse struct {
	SessionID string             `json:"session_id"`
	Pack      string             `json:"pack"`
	Results   []gacha.PullResult `json:"results"`
	Balance   int                `json:"balance"`
}

type DeclinedResponse struct {
	Declined bool          `json:"declined"`
	Reason   string        `json:"reason"`
	Cost     int           `json:"cost"`
	Balance  int           `json:"balance"`
	TopUp    *pricing.Plan `json:"top_up,omitempty"` // cheapest bundles covering the shortfall
}

type PacksResponse struct {
	GameVersion string      `json:"game_version"`
	Currency    string      `json:"currency"`
	Packs       []game.Pack `json:"packs"`
}

type ledgerQuery struct {
	Limit int `validate:"gte=0,lte=1000"`
}

type quoteQuery struct {
	Tokens      int `validate:"gte=0,lte=100000"`
	BudgetCents int `validate:"gte=0,lte=100000"`
}

type handlers struct {
	deps Deps
}

// HandleHealthz provides a basic liveness check
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// HandleReadyz checks the session store when one is configured.
func HandleReadyz(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logger.FromContext(ctx).Error("Readiness check failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Message: ErrMsgNotReady})
				return
			}
		}
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

func (h *handlers) HandleListPacks(w http.ResponseWriter, r *http.Request) {
	g := h.deps.Games.Current()
	respondJSON(w, http.StatusOK, PacksResponse{
		GameVersion: g.Version,
		Currency:    g.Token.Name,
		Packs:       g.Packs(),
	})
}

func (h *handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Debug("Failed to decode create session request", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrMsgInvalidRequest, Fields: formatValidationError(err)})
		return
	}
	balance := h.deps.StartingBalance
	if req.Balance != nil {
		balance = *req.Balance
	}

	s, err := h.deps.Sessions.Create(r.Context(), balance)
	if err != nil {
		log.Error("Failed to create session", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgCreateSessionErr)
		return
	}
	respondJSON(w, http.StatusCreated, SessionResponse{
		SessionID:   s.ID(),
		Balance:     balance,
		GameVersion: s.Game().Version,
	})
}

func (h *handlers) HandleOpenPack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	packID := chi.URLParam(r, "packID")
	ctx := logger.WithSessionID(r.Context(), id)
	log := logger.FromContext(ctx)

	var (
		res     gacha.PackResult
		balance int
		shop    *pricing.Catalog
		opened  bool
	)
	err := h.deps.Sessions.With(ctx, id, func(s *session.Session) error {
		pack, ok := s.Game().Pack(packID)
		if !ok {
			return fmt.Errorf("%w: %s", game.ErrUnknownPack, packID)
		}
		var err error
		res, err = s.OpenPack(ctx, pack)
		opened = err == nil
		balance = s.Balance()
		shop = s.Game().Shop
		return err
	})
	if opened && errors.Is(err, session.ErrNotSaved) {
		// the pack is paid for; the session retries the save on its next use
		log.Warn("Pack opened but session not saved", "pack", packID, "error", err)
		err = nil
	}
	if err != nil {
		status, msg := mapServiceError(err)
		if status >= http.StatusInternalServerError {
			log.Error("Failed to open pack", "pack", packID, "error", err)
		}
		respondError(w, status, msg)
		return
	}
	if res.IsDeclined() {
		resp := DeclinedResponse{
			Declined: true,
			Reason:   res.Declined.Reason,
			Cost:     res.Declined.Cost,
			Balance:  balance,
		}
		if shortfall := res.Declined.Cost - balance; shop != nil && shortfall > 0 {
			plan := pricing.MinCostAtLeastTokens(*shop, shortfall, nil)
			if len(plan.Purchases) > 0 {
				resp.TopUp = &plan
			}
		}
		respondJSON(w, http.StatusPaymentRequired, resp)
		return
	}
	respondJSON(w, http.StatusOK, OpenPackResponse{SessionID: id, Pack: packID, Results: res.Pulls, Balance: balance})
}

func (h *handlers) HandlePityStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var status []gacha.PityStatus
	err := h.deps.Sessions.With(r.Context(), id, func(s *session.Session) error {
		status = s.PityStatus()
		return nil
	})
	if err != nil {
		code, msg := mapServiceError(err)
		respondError(w, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *handlers) HandleLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	q := ledgerQuery{Limit: 20}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		q.Limit = n
	}
	if err := validate.Struct(q); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrMsgInvalidLimit, Fields: formatValidationError(err)})
		return
	}

	var pulls []gacha.PullResult
	err := h.deps.Sessions.With(r.Context(), id, func(s *session.Session) error {
		pulls = s.Ledger(q.Limit)
		return nil
	})
	if err != nil {
		code, msg := mapServiceError(err)
		respondError(w, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, pulls)
}

func (h *handlers) HandleBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var resp SessionResponse
	err := h.deps.Sessions.With(r.Context(), id, func(s *session.Session) error {
		resp = SessionResponse{SessionID: id, Balance: s.Balance(), GameVersion: s.Game().Version}
		return nil
	})
	if err != nil {
		code, msg := mapServiceError(err)
		respondError(w, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleShopQuote prices either ?tokens=N (cheapest plan granting at least N)
// or ?budget_cents=N (most tokens for the budget). ?first_time=a,b marks SKUs
// whose first-purchase bonus is still available.
func (h *handlers) HandleShopQuote(w http.ResponseWriter, r *http.Request) {
	g := h.deps.Games.Current()
	if g.Shop == nil {
		respondError(w, http.StatusNotFound, ErrMsgNoShop)
		return
	}

	var q quoteQuery
	values := r.URL.Query()
	for key, dst := range map[string]*int{"tokens": &q.Tokens, "budget_cents": &q.BudgetCents} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidQuote)
			return
		}
		*dst = n
	}
	if err := validate.Struct(q); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrMsgInvalidQuote, Fields: formatValidationError(err)})
		return
	}
	if (q.Tokens > 0) == (q.BudgetCents > 0) {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidQuote)
		return
	}

	first := pricing.FirstTimeState{}
	for _, id := range strings.Split(values.Get("first_time"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			first[id] = true
		}
	}

	if q.Tokens > 0 {
		respondJSON(w, http.StatusOK, pricing.MinCostAtLeastTokens(*g.Shop, q.Tokens, first))
		return
	}
	respondJSON(w, http.StatusOK, pricing.MaxTokensUnderBudget(*g.Shop, q.BudgetCents, first))
}

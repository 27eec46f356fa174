package api

import (
	"net/http"

	"arcade/service"
)

type joinArenaRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

func (s *Server) handleJoinArena(w http.ResponseWriter, r *http.Request) {
	var req joinArenaRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	round, err := s.arenaService.JoinCurrentRound(r.Context(), req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, round)
}

type activityRewardRequest struct {
	DiscordID int64                `json:"discord_id" validate:"required"`
	Username  string               `json:"username" validate:"required,max=100"`
	Kind      service.ActivityKind `json:"kind" validate:"required,oneof=message voice"`
}

type activityRewardResponse struct {
	Rewarded   bool  `json:"rewarded"`
	Amount     int64 `json:"amount,omitempty"`
	NewBalance int64 `json:"new_balance,omitempty"`
	OnCooldown bool  `json:"on_cooldown"`
}

func (s *Server) handleActivityReward(w http.ResponseWriter, r *http.Request) {
	var req activityRewardRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	txn, err := s.activityService.RewardActivity(r.Context(), req.DiscordID, req.Username, req.Kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := activityRewardResponse{OnCooldown: txn == nil}
	if txn != nil {
		resp.Rewarded = true
		resp.Amount = txn.Amount
		resp.NewBalance = txn.BalanceAfter
	}

	respondJSON(w, http.StatusOK, resp)
}

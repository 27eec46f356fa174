package api

import (
	"net/http"

	"arcade/models"
)

type getOrCreateUserRequest struct {
	DiscordID int64  `json:"discord_id" validate:"required"`
	Username  string `json:"username" validate:"required,max=100"`
}

func (s *Server) handleGetOrCreateUser(w http.ResponseWriter, r *http.Request) {
	var req getOrCreateUserRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := s.userService.GetOrCreateUser(r.Context(), req.DiscordID, req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var pointType *models.PointType
	if raw := r.URL.Query().Get("point_type"); raw != "" {
		pt := models.PointType(raw)
		if pt != models.PointTypeRedeemable && pt != models.PointTypeSoulBound {
			respondError(w, http.StatusBadRequest, "invalid point type")
			return
		}
		pointType = &pt
	}

	txns, err := s.userService.GetTransactionHistory(r.Context(), userID, pointType, queryLimit(r, 50, 200))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, txns)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.userService.GetLeaderboard(r.Context(), queryLimit(r, 10, 100))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

type adjustBalanceRequest struct {
	PointType models.PointType `json:"point_type" validate:"required,oneof=redeemable soul_bound"`
	Amount    int64            `json:"amount" validate:"required"`
	Reason    string           `json:"reason" validate:"required,max=500"`
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req adjustBalanceRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	txn, err := s.userService.AdjustBalance(r.Context(), userID, req.PointType, req.Amount, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, txn)
}

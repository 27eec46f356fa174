package api

import (
	"net/http"

	"arcade/models"
)

type createGameRequest struct {
	Name   string          `json:"name" validate:"required"`
	Type   models.GameType `json:"game_type" validate:"omitempty,oneof=plinko"`
	MinBet int64           `json:"min_bet" validate:"required,gt=0"`
	MaxBet int64           `json:"max_bet" validate:"required,gtefield=MinBet"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	game := &models.Game{
		Name:   req.Name,
		Type:   req.Type,
		MinBet: req.MinBet,
		MaxBet: req.MaxBet,
		Active: true,
	}
	if err := s.gameService.CreateGame(r.Context(), game); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.gameService.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid game ID")
		return
	}

	game, err := s.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleGameStats(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid game ID")
		return
	}

	stats, err := s.gameService.GetStats(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

type playGameRequest struct {
	UserID    int64            `json:"user_id" validate:"required"`
	BetAmount int64            `json:"bet_amount" validate:"required,gt=0"`
	Risk      models.RiskLevel `json:"risk" validate:"omitempty,oneof=low medium high"`
}

func (s *Server) handlePlayGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid game ID")
		return
	}

	var req playGameRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.gameService.Play(r.Context(), gameID, req.UserID, req.BetAmount, req.Risk)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

package api

import (
	"net/http"
	"time"

	"arcade/models"
)

func (s *Server) handleListRaffles(w http.ResponseWriter, r *http.Request) {
	raffles, err := s.raffleService.ListActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, raffles)
}

func (s *Server) handleGetRaffle(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r, "raffleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid raffle ID")
		return
	}

	raffle, err := s.raffleService.GetRaffle(r.Context(), raffleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, raffle)
}

type purchaseEntriesRequest struct {
	UserID          int64 `json:"user_id" validate:"required"`
	NumberOfEntries int64 `json:"number_of_entries" validate:"required,gt=0"`
}

func (s *Server) handlePurchaseEntries(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r, "raffleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid raffle ID")
		return
	}

	var req purchaseEntriesRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.raffleService.PurchaseEntries(r.Context(), raffleID, req.UserID, req.NumberOfEntries)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

type createRaffleRequest struct {
	Title             string    `json:"title" validate:"required,max=200"`
	Description       string    `json:"description" validate:"max=1000"`
	TicketPrice       int64     `json:"ticket_price" validate:"gte=0"`
	MaxEntries        int64     `json:"max_entries" validate:"required,gt=0"`
	MaxEntriesPerUser *int64    `json:"max_entries_per_user"`
	StartsAt          time.Time `json:"starts_at" validate:"required"`
	EndsAt            time.Time `json:"ends_at" validate:"required"`
}

func (s *Server) handleCreateRaffle(w http.ResponseWriter, r *http.Request) {
	var req createRaffleRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	raffle := &models.Raffle{
		Title:             req.Title,
		Description:       req.Description,
		TicketPrice:       req.TicketPrice,
		MaxEntries:        req.MaxEntries,
		MaxEntriesPerUser: req.MaxEntriesPerUser,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
	}
	if err := s.raffleService.CreateRaffle(r.Context(), raffle); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, raffle)
}

func (s *Server) handleActivateRaffle(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r, "raffleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid raffle ID")
		return
	}

	if err := s.raffleService.ActivateRaffle(r.Context(), raffleID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"raffle_id": raffleID})
}

func (s *Server) handleDrawWinner(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r, "raffleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid raffle ID")
		return
	}

	result, err := s.raffleService.DrawWinner(r.Context(), raffleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelRaffle(w http.ResponseWriter, r *http.Request) {
	raffleID, err := pathID(r, "raffleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid raffle ID")
		return
	}

	if err := s.raffleService.CancelRaffle(r.Context(), raffleID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"raffle_id": raffleID})
}

package api

import (
	"net/http"

	"arcade/models"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.shopService.ListItems(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

type purchaseItemRequest struct {
	UserID   int64 `json:"user_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

func (s *Server) handlePurchaseItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req purchaseItemRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	purchase, err := s.shopService.PurchaseItem(r.Context(), itemID, req.UserID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, purchase)
}

type openLootboxRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

func (s *Server) handleOpenLootbox(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := pathID(r, "purchaseID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase ID")
		return
	}

	var req openLootboxRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.shopService.OpenLootbox(r.Context(), purchaseID, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type createItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       int64           `json:"price" validate:"gte=0"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	Type        models.ItemType `json:"item_type" validate:"required,oneof=standard lootbox"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      true,
		Type:        req.Type,
	}
	if err := s.shopService.CreateItem(r.Context(), item); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

type addLootboxRewardRequest struct {
	Kind         models.RewardKind `json:"reward_kind" validate:"required,oneof=points item"`
	PointsAmount int64             `json:"points_amount" validate:"gte=0"`
	RewardItemID *int64            `json:"reward_item_id"`
	Weight       int64             `json:"weight" validate:"required,gt=0"`
}

func (s *Server) handleAddLootboxReward(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req addLootboxRewardRequest
	if err := s.decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reward := &models.LootboxReward{
		ItemID:       itemID,
		Kind:         req.Kind,
		PointsAmount: req.PointsAmount,
		RewardItemID: req.RewardItemID,
		Weight:       req.Weight,
	}
	if err := s.shopService.AddLootboxReward(r.Context(), reward); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, reward)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"arcade/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Server holds the HTTP handlers and their service dependencies
type Server struct {
	userService     service.UserService
	shopService     service.ShopService
	gameService     service.GameService
	raffleService   service.RaffleService
	arenaService    service.ArenaService
	activityService service.ActivityService
	validate        *validator.Validate
	jwtSecret       string
}

// NewServer creates a new API server
func NewServer(
	userService service.UserService,
	shopService service.ShopService,
	gameService service.GameService,
	raffleService service.RaffleService,
	arenaService service.ArenaService,
	activityService service.ActivityService,
	jwtSecret string,
) *Server {
	return &Server{
		userService:     userService,
		shopService:     shopService,
		gameService:     gameService,
		raffleService:   raffleService,
		arenaService:    arenaService,
		activityService: activityService,
		validate:        validator.New(),
		jwtSecret:       jwtSecret,
	}
}

// Router builds the chi router with all routes mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.handleGetOrCreateUser)
		r.Get("/users/{userID}", s.handleGetUser)
		r.Get("/users/{userID}/transactions", s.handleGetTransactions)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Get("/shop/items", s.handleListItems)
		r.Post("/shop/items/{itemID}/purchase", s.handlePurchaseItem)
		r.Post("/shop/purchases/{purchaseID}/open", s.handleOpenLootbox)

		r.Get("/games", s.handleListGames)
		r.Get("/games/{gameID}", s.handleGetGame)
		r.Get("/games/{gameID}/stats", s.handleGameStats)
		r.Post("/games/{gameID}/play", s.handlePlayGame)

		r.Get("/raffles", s.handleListRaffles)
		r.Get("/raffles/{raffleID}", s.handleGetRaffle)
		r.Post("/raffles/{raffleID}/entries", s.handlePurchaseEntries)

		r.Post("/arena/join", s.handleJoinArena)
		r.Post("/activity", s.handleActivityReward)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth(s.jwtSecret))

			r.Post("/users/{userID}/adjust", s.handleAdjustBalance)
			r.Post("/shop/items", s.handleCreateItem)
			r.Post("/shop/items/{itemID}/rewards", s.handleAddLootboxReward)
			r.Post("/games", s.handleCreateGame)
			r.Post("/raffles", s.handleCreateRaffle)
			r.Post("/raffles/{raffleID}/activate", s.handleActivateRaffle)
			r.Post("/raffles/{raffleID}/draw", s.handleDrawWinner)
			r.Post("/raffles/{raffleID}/cancel", s.handleCancelRaffle)
		})
	})

	return r
}

// decodeBody decodes and validates a JSON request body
func (s *Server) decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return s.validate.Struct(dst)
}

// pathID parses a numeric URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// queryLimit parses the limit query parameter, defaulting and capping it
func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

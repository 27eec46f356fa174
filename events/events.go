package events

import (
	"context"
	"sync"

	"arcade/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeUserCreated       EventType = "user_created"
	EventTypePurchaseCompleted EventType = "purchase_completed"
	EventTypeLootboxOpened     EventType = "lootbox_opened"
	EventTypeGamePlayed        EventType = "game_played"
	EventTypeRaffleEnded       EventType = "raffle_ended"
	EventTypeArenaRoundEnded   EventType = "arena_round_ended"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	PointType       models.PointType
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// PurchaseCompletedEvent represents a shop purchase that completed
type PurchaseCompletedEvent struct {
	PurchaseID int64
	UserID     int64
	ItemID     int64
	Quantity   int64
	TotalPrice int64
}

func (e PurchaseCompletedEvent) Type() EventType {
	return EventTypePurchaseCompleted
}

// LootboxOpenedEvent represents a lootbox that was opened
type LootboxOpenedEvent struct {
	OpeningID    int64
	PurchaseID   int64
	UserID       int64
	RewardKind   models.RewardKind
	PointsAmount int64
}

func (e LootboxOpenedEvent) Type() EventType {
	return EventTypeLootboxOpened
}

// GamePlayedEvent represents a completed game session
type GamePlayedEvent struct {
	SessionID int64
	GameID    int64
	UserID    int64
	BetAmount int64
	WinAmount int64
	Result    models.GameResult
}

func (e GamePlayedEvent) Type() EventType {
	return EventTypeGamePlayed
}

// RaffleEndedEvent represents a raffle whose winner was drawn
type RaffleEndedEvent struct {
	RaffleID            int64
	WinnerUserID        int64
	WinningTicketNumber int64
	TotalTicketsSold    int64
}

func (e RaffleEndedEvent) Type() EventType {
	return EventTypeRaffleEnded
}

// ArenaRoundEndedEvent represents an arena round that closed with a winner
type ArenaRoundEndedEvent struct {
	RoundID      int64
	WinnerUserID *int64
	RewardAmount int64
	Participants int64
}

func (e ArenaRoundEndedEvent) Type() EventType {
	return EventTypeArenaRoundEnded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission so handlers are not bound
	// to the lifetime of the transaction's context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

package testutil

import (
	"time"

	"arcade/models"
)

// CreateTestItem creates a standard shop item with sensible defaults
func CreateTestItem(name string, price int64) *models.Item {
	return &models.Item{
		Name:   name,
		Price:  price,
		Stock:  100,
		Active: true,
		Type:   models.ItemTypeStandard,
	}
}

// CreateTestLootbox creates a lootbox item
func CreateTestLootbox(name string, price int64) *models.Item {
	item := CreateTestItem(name, price)
	item.Type = models.ItemTypeLootbox
	return item
}

// CreateTestGame creates a plinko game with wide bet limits
func CreateTestGame(name string) *models.Game {
	return &models.Game{
		Name:   name,
		Type:   models.GameTypePlinko,
		MinBet: 1,
		MaxBet: 100000,
		Active: true,
	}
}

// CreateTestRaffle creates an active raffle open around the given time
func CreateTestRaffle(title string, ticketPrice, maxEntries int64, now time.Time) *models.Raffle {
	return &models.Raffle{
		Title:       title,
		TicketPrice: ticketPrice,
		MaxEntries:  maxEntries,
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(time.Hour),
		Status:      models.RaffleStatusActive,
	}
}

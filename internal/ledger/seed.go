package ledger

import (
	"cambistas-backend/internal/models"

	"github.com/shopspring/decimal"
)

// SeedDemo replaces the state with a demo roster of two zones and three
// agents with activity in the first two weeks.
func (l *Ledger) SeedDemo() {
	leste, oeste := l.newID(), l.newID()
	joao, maria, carlos := l.newID(), l.newID(), l.newID()

	entry := func(due, received, sales int64, confirmed bool) models.PaymentEntry {
		return models.PaymentEntry{
			AmountDue:      decimal.NewFromInt(due),
			AmountReceived: decimal.NewFromInt(received),
			SalesValue:     decimal.NewFromInt(sales),
			IsConfirmed:    confirmed,
		}
	}

	weeks := newWeekMap()
	weeks[1][joao] = entry(500, 500, 1200, true)
	weeks[1][maria] = entry(300, 100, 800, false)
	weeks[1][carlos] = entry(0, 0, 500, false)
	weeks[2][joao] = entry(400, 400, 1000, false)
	weeks[2][maria] = entry(250, 0, 600, false)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.groups = []models.Group{
		{ID: leste, Name: "Zona Leste"},
		{ID: oeste, Name: "Zona Oeste"},
	}
	l.agents = []models.Agent{
		{ID: joao, Name: "João da Silva", GroupIDs: []string{leste}},
		{ID: maria, Name: "Maria Oliveira", GroupIDs: []string{oeste}},
		{ID: carlos, Name: "Carlos Pereira", GroupIDs: []string{leste, oeste}},
	}
	l.weeks = weeks
	l.version++
}

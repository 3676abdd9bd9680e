// Package models defines the GORM models persisted by the service.
package models

// All lists every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&BudgetCycle{},
		&Transaction{},
		&AnalyticsSnapshot{},
		&CurrencyRate{},
		&AuditLog{},
	}
}

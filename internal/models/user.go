package models

// User is the local projection of an identity managed by the external auth
// provider. Credentials are never stored here.
type User struct {
	Base
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	Name         string        `json:"name"`
	BaseCurrency string        `gorm:"type:varchar(3);not null;default:'USD'" json:"base_currency"`
	Cycles       []BudgetCycle `gorm:"foreignKey:UserID" json:"cycles,omitempty"`
}

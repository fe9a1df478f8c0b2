package models

import "time"

// StateEntry is one persisted storefront slot (token, user, cart, lastOrder)
// scoped by profile namespace.
type StateEntry struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	StateKey  string    `gorm:"column:state_key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (StateEntry) TableName() string {
	return "storefront_kv"
}

package company

import "time"

// Company is the GORM-tagged persistence row for a tenant.
type Company struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Country   string    `gorm:"column:country"`
	Currency  string    `gorm:"column:currency;size:3;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Company) TableName() string {
	return "companies"
}

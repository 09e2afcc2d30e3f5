package models

const DefaultCategory = "General"

type Product struct {
	ID       int     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string  `gorm:"not null"                 json:"name"`
	Category string  `                                json:"category"`
	Stock    int     `gorm:"not null"                 json:"stock"`
	Price    float64 `gorm:"not null"                 json:"price"`
}

type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"unique;not null"          json:"username"`
	Password string `gorm:"not null"                 json:"-"`
}

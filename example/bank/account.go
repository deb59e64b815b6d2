// Package bank is a sample domain wired through the container: a DAO bean,
// a transactional transfer service behind an interface facade and a teller
// bean proxied by embedding.
package bank

import (
	"context"
	"time"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientFunds the payer balance is lower than the amount
	ErrInsufficientFunds = errcode.Register(errcode.New(
		21, 101, "bank", "error.bank.insufficient_funds", "insufficient funds"))

	// ErrAccountNotFound no account with the card number
	ErrAccountNotFound = errcode.Register(errcode.New(
		21, 102, "bank", "error.bank.account_not_found", "account not found"))

	// ErrInvalidAmount amount must be positive
	ErrInvalidAmount = errcode.Register(errcode.New(
		21, 103, "bank", "error.bank.invalid_amount", "amount must be positive"))
)

// Account 账户
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	CardNo    string `gorm:"size:32;uniqueIndex;not null"`
	Name      string `gorm:"size:64"`
	Money     int64  // 单位：分
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 表名
func (Account) TableName() string {
	return "accounts"
}

// Migrate 建表
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&Account{})
}

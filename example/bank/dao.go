package bank

import (
	"context"
	"errors"

	"github.com/KOMKZ/go-yogan-ioc/database"
	"gorm.io/gorm"
)

// AccountDao 账户数据访问
type AccountDao interface {
	QueryAccountByCardNo(ctx context.Context, cardNo string) (*Account, error)
	UpdateAccountByCardNo(ctx context.Context, account *Account) error
	Create(ctx context.Context, account *Account) error
	FindAll(ctx context.Context) ([]Account, error)
}

// GormAccountDao 基于 gorm 的实现；ctx 中有事务时自动加入
type GormAccountDao struct {
	*database.BaseRepository[Account]
}

// NewGormAccountDao creates the DAO over db
func NewGormAccountDao(db *gorm.DB) *GormAccountDao {
	return &GormAccountDao{BaseRepository: database.NewBaseRepository[Account](db)}
}

// QueryAccountByCardNo 按卡号查询
func (d *GormAccountDao) QueryAccountByCardNo(ctx context.Context, cardNo string) (*Account, error) {
	account, err := d.FindOne(ctx, "card_no = ?", cardNo)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, ErrAccountNotFound.WithData("card_no", cardNo)
	}
	return account, err
}

// UpdateAccountByCardNo 按卡号更新余额
func (d *GormAccountDao) UpdateAccountByCardNo(ctx context.Context, account *Account) error {
	result := d.DB(ctx).Model(&Account{}).
		Where("card_no = ?", account.CardNo).
		Update("money", account.Money)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound.WithData("card_no", account.CardNo)
	}
	return nil
}

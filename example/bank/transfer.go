package bank

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-ioc/bean"
)

// TransferService 转账服务
type TransferService interface {
	Transfer(ctx context.Context, fromCardNo, toCardNo string, money int64) error
}

// TransferServiceImpl 转账实现，Transfer 在事务中执行
type TransferServiceImpl struct {
	accountDao AccountDao `inject:""`
}

// SetAccountDao 注入 AccountDao
func (s *TransferServiceImpl) SetAccountDao(dao AccountDao) {
	s.accountDao = dao
}

// Transfer 先入账后扣款；余额不足时已写入的入账由事务回滚
func (s *TransferServiceImpl) Transfer(ctx context.Context, fromCardNo, toCardNo string, money int64) error {
	if money <= 0 {
		return ErrInvalidAmount.WithData("money", money)
	}

	from, err := s.accountDao.QueryAccountByCardNo(ctx, fromCardNo)
	if err != nil {
		return err
	}
	to, err := s.accountDao.QueryAccountByCardNo(ctx, toCardNo)
	if err != nil {
		return err
	}

	to.Money += money
	if err := s.accountDao.UpdateAccountByCardNo(ctx, to); err != nil {
		return fmt.Errorf("credit %s: %w", toCardNo, err)
	}

	if from.Money < money {
		return ErrInsufficientFunds.
			WithData("card_no", fromCardNo).
			WithData("balance", from.Money).
			WithData("money", money)
	}
	from.Money -= money
	if err := s.accountDao.UpdateAccountByCardNo(ctx, from); err != nil {
		return fmt.Errorf("debit %s: %w", fromCardNo, err)
	}
	return nil
}

// txTransferService 事务代理
type txTransferService struct {
	inv bean.Invoker
}

func (f *txTransferService) Transfer(ctx context.Context, fromCardNo, toCardNo string, money int64) error {
	return bean.Call(ctx, f.inv, "Transfer", fromCardNo, toCardNo, money)
}

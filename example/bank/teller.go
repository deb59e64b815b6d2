package bank

import (
	"context"

	"github.com/KOMKZ/go-yogan-ioc/bean"
)

// Teller 柜台：没有接口，按嵌入方式代理
type Teller struct {
	Accounts  AccountDao      `inject:""`
	Transfers TransferService `inject:""`
}

// Open 开户；卡号重复时整体回滚
func (t *Teller) Open(ctx context.Context, accounts ...*Account) error {
	for _, a := range accounts {
		if err := t.Accounts.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Deposit 存款
func (t *Teller) Deposit(ctx context.Context, cardNo string, money int64) error {
	if money <= 0 {
		return ErrInvalidAmount.WithData("money", money)
	}
	account, err := t.Accounts.QueryAccountByCardNo(ctx, cardNo)
	if err != nil {
		return err
	}
	account.Money += money
	return t.Accounts.UpdateAccountByCardNo(ctx, account)
}

// Balance 查询余额（非事务）
func (t *Teller) Balance(ctx context.Context, cardNo string) (int64, error) {
	account, err := t.Accounts.QueryAccountByCardNo(ctx, cardNo)
	if err != nil {
		return 0, err
	}
	return account.Money, nil
}

// Move 转账，委托给注入的 TransferService（即其事务代理）
func (t *Teller) Move(ctx context.Context, fromCardNo, toCardNo string, money int64) error {
	return t.Transfers.Transfer(ctx, fromCardNo, toCardNo, money)
}

// txTeller 嵌入式事务代理：只覆盖事务方法
type txTeller struct {
	*Teller
	inv bean.Invoker
}

func (f *txTeller) Open(ctx context.Context, accounts ...*Account) error {
	args := make([]any, len(accounts))
	for i, a := range accounts {
		args[i] = a
	}
	return bean.Call(ctx, f.inv, "Open", args...)
}

func (f *txTeller) Deposit(ctx context.Context, cardNo string, money int64) error {
	return bean.Call(ctx, f.inv, "Deposit", cardNo, money)
}

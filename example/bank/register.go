package bank

import (
	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"gorm.io/gorm"
)

// 组件所在的命名空间
const (
	NamespaceDao     = "bank/dao"
	NamespaceService = "bank/service"
	NamespaceTeller  = "bank/teller"
)

// DBSource 在扫描时提供连接（此时数据库组件才可用）
type DBSource func() (*gorm.DB, error)

// Register 把 bank 组件声明到 catalog
func Register(catalog *scanner.Catalog, source DBSource) *scanner.Catalog {
	return catalog.
		Add(NamespaceDao,
			scanner.LazyUnit("bank.GormAccountDao", func() (*bean.Descriptor, error) {
				db, err := source()
				if err != nil {
					return nil, err
				}
				return AccountDaoDescriptor(db), nil
			}),
			scanner.ResourceUnit("accounts.sql"),
		).
		Descriptors(NamespaceService, TransferServiceDescriptor()).
		Descriptors(NamespaceTeller, TellerDescriptor())
}

// AccountDaoDescriptor accountDao bean
func AccountDaoDescriptor(db *gorm.DB) *bean.Descriptor {
	return bean.Of[*GormAccountDao](
		bean.Service("accountDao"),
		bean.Implements[AccountDao](),
		bean.Constructor(func() *GormAccountDao { return NewGormAccountDao(db) }),
	)
}

// TransferServiceDescriptor transferService bean, Transfer 为事务方法
func TransferServiceDescriptor() *bean.Descriptor {
	return bean.Of[*TransferServiceImpl](
		bean.Service("transferService"),
		bean.Implements[TransferService](),
		bean.Transactional("Transfer"),
		bean.Facade(func(target *TransferServiceImpl, inv bean.Invoker) any {
			return &txTransferService{inv: inv}
		}),
	)
}

// TellerDescriptor teller bean, Open/Deposit 为事务方法
func TellerDescriptor() *bean.Descriptor {
	return bean.Of[*Teller](
		bean.Service("teller"),
		bean.Transactional("Open", "Deposit"),
		bean.Facade(func(target *Teller, inv bean.Invoker) any {
			return &txTeller{Teller: target, inv: inv}
		}),
	)
}

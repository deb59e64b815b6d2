// Package di wires the container and its infrastructure with samber/do.
//
// Providers are registered lazily by layer:
//
//	config.Loader -> logger.Manager -> telemetry.Manager -> database.Manager -> tx.Manager -> container.Container
package di

import (
	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"github.com/samber/do/v2"
)

// Injector 类型别名
type Injector = do.Injector

// RootScope 类型别名
type RootScope = do.RootScope

// New 创建新的根注入器
var New = do.New

// ErrComponentNotFound a provider dependency is not configured
var ErrComponentNotFound = errcode.Register(errcode.New(
	20, 601, "di", "error.di.component_not_found", "component not found"))

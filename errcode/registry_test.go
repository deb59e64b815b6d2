package errcode

import (
	"testing"
)

// TestRegistry_Register 测试注册错误码
func TestRegistry_Register(t *testing.T) {
	registry := &Registry{codes: make(map[int]string)}

	registry.Register(New(20, 101, "ioc", "error.ioc.scan", "scan failed"))
	registry.Register(New(21, 1, "tx", "error.tx.begin", "begin failed"))

	if registry.Count() != 2 {
		t.Errorf("expected 2 registered codes, got %d", registry.Count())
	}

	codes := registry.GetAll()
	if codes[200101] != "ioc:error.ioc.scan" {
		t.Errorf("unexpected entry %s", codes[200101])
	}
}

// TestRegistry_Register_Duplicate 测试重复注册（幂等）
func TestRegistry_Register_Duplicate(t *testing.T) {
	registry := &Registry{codes: make(map[int]string)}

	registry.Register(New(20, 101, "ioc", "error.ioc.scan", "scan failed"))
	registry.Register(New(20, 101, "ioc", "error.ioc.scan", "scan failed"))

	if registry.Count() != 1 {
		t.Errorf("expected 1 registered code, got %d", registry.Count())
	}
}

// TestRegistry_Register_Conflict 测试错误码冲突（panic）
func TestRegistry_Register_Conflict(t *testing.T) {
	registry := &Registry{codes: make(map[int]string)}
	registry.Register(New(20, 101, "ioc", "error.ioc.scan", "scan failed"))

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for conflicting error code")
		}
	}()

	registry.Register(New(20, 101, "ioc", "error.ioc.other", "other"))
}

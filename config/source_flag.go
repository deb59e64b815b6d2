package config

import (
	"github.com/spf13/pflag"
)

// FlagSource 命令行参数数据源：只读取用户显式设置过的 flag
type FlagSource struct {
	flags    *pflag.FlagSet
	bindings map[string]string // flag 名 -> 配置 key
	priority int
}

// NewFlagSource creates a source over flags. bindings maps flag names to
// config keys; unbound flags are ignored.
func NewFlagSource(flags *pflag.FlagSet, bindings map[string]string, priority int) *FlagSource {
	return &FlagSource{flags: flags, bindings: bindings, priority: priority}
}

// Name 数据源名称
func (s *FlagSource) Name() string {
	return "flags"
}

// Priority 优先级
func (s *FlagSource) Priority() int {
	return s.priority
}

// Load 加载已修改的 flag
func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.flags == nil {
		return result, nil
	}

	s.flags.Visit(func(f *pflag.Flag) {
		if key, ok := s.bindings[f.Name]; ok {
			result[key] = f.Value.String()
		}
	})
	return result, nil
}

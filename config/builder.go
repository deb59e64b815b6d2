package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// 数据源优先级
const (
	PriorityBaseFile = 10
	PriorityEnvFile  = 20
	PriorityEnvVars  = 50
	PriorityFlags    = 100
)

// LoaderBuilder 加载器构建器
type LoaderBuilder struct {
	configPath   string
	envPrefix    string
	flags        *pflag.FlagSet
	flagBindings map[string]string
}

// NewLoaderBuilder 创建构建器
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

// WithConfigPath 配置目录（读取 config.yaml 与 <env>.yaml）
func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix 环境变量前缀
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithFlags 命令行参数，bindings 为 flag 名 -> 配置 key
func (b *LoaderBuilder) WithFlags(flags *pflag.FlagSet, bindings map[string]string) *LoaderBuilder {
	b.flags = flags
	b.flagBindings = bindings
	return b
}

// Build 构建并加载
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityBaseFile))
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, GetEnv()+".yaml"), PriorityEnvFile))
	}

	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, PriorityEnvVars))
	}

	if b.flags != nil {
		loader.AddSource(NewFlagSource(b.flags, b.flagBindings, PriorityFlags))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv 运行环境：APP_ENV > ENV > dev
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}

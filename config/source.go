// Package config loads layered configuration from files, environment
// variables and command-line flags.
package config

// ConfigSource 配置数据源（文件、环境变量、命令行参数等）
type ConfigSource interface {
	// Name 数据源名称（用于日志与排错）
	Name() string

	// Priority 数值越大优先级越高
	// 建议值：config.yaml 10，<env>.yaml 20，环境变量 50，命令行 100
	Priority() int

	// Load 返回以点号分隔 key 的扁平配置，如 "ioc.scan_root"
	Load() (map[string]interface{}, error)
}

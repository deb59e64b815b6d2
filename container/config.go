package container

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_./-]*$`)

// Config ioc 配置段
type Config struct {
	ScanRoot   string `mapstructure:"scan_root"`  // 扫描根命名空间，空表示全部
	Recursive  *bool  `mapstructure:"recursive"`  // 是否扫描子命名空间（默认 true）
	Connection string `mapstructure:"connection"` // 事务使用的数据库连接名
}

// DefaultConfig returns the configuration used when the ioc section is absent
func DefaultConfig() Config {
	recursive := true
	return Config{Recursive: &recursive, Connection: "master"}
}

// ApplyDefaults 填充默认值（原地修改）
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Recursive == nil {
		c.Recursive = defaults.Recursive
	}
	if c.Connection == "" {
		c.Connection = defaults.Connection
	}
}

// IsRecursive 未配置时为 true
func (c Config) IsRecursive() bool {
	return c.Recursive == nil || *c.Recursive
}

// Validate implements validator.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ScanRoot, validation.Match(namespacePattern)),
		validation.Field(&c.Connection, validation.Required),
	)
}

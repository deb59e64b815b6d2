package application

import (
	"github.com/KOMKZ/go-yogan-ioc/config"
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/database"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/telemetry"
	"github.com/KOMKZ/go-yogan-ioc/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppConfig 应用配置
type AppConfig struct {
	IOC       container.Config      `mapstructure:"ioc"`
	Logger    *logger.ManagerConfig `mapstructure:"logger,omitempty"`
	Database  DatabaseConfig        `mapstructure:"database"`
	Telemetry telemetry.Config      `mapstructure:"telemetry"`
}

// DatabaseConfig database 配置段
type DatabaseConfig struct {
	Connections map[string]database.Config `mapstructure:"connections"`
}

// Validate 校验各连接配置
func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Connections),
	)
}

// ApplyDefaults 填充默认值（原地修改）
func (c *AppConfig) ApplyDefaults() {
	c.IOC.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Logger != nil {
		c.Logger.ApplyDefaults()
	}
	for name, conn := range c.Database.Connections {
		conn.ApplyDefaults()
		c.Database.Connections[name] = conn
	}
}

// Validate implements validator.Validatable.
// 配置了数据库时，ioc.connection 必须指向已配置的连接
func (c AppConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.IOC),
		validation.Field(&c.Logger),
		validation.Field(&c.Database),
		validation.Field(&c.Telemetry),
	)
	if err != nil {
		return err
	}

	if len(c.Database.Connections) > 0 {
		if _, ok := c.Database.Connections[c.IOC.Connection]; !ok {
			return validation.Errors{
				"IOC": validation.Errors{
					"Connection": validation.NewError("validation_unknown_connection",
						"must name a configured database connection"),
				},
			}
		}
	}
	return nil
}

// LoadAppConfig 解析、填充默认值并校验
func LoadAppConfig(loader *config.Loader) (*AppConfig, error) {
	var cfg AppConfig
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

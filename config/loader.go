package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader 多数据源配置加载器
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]interface{} // 扁平 key
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader 创建加载器
func NewLoader() *Loader {
	return &Loader{
		sources:      make([]ConfigSource, 0),
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
		loadedFiles:  make([]string, 0),
	}
}

// AddSource 添加数据源
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load 按优先级从低到高加载并合并，高优先级覆盖低优先级
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]interface{})
	files := make([]string, 0)
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("加载数据源 %s 失败: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok {
			files = append(files, fs.path)
		}
		for key, value := range data {
			merged[key] = value
		}
	}

	l.mergedConfig = merged
	l.loadedFiles = files
	l.v = viper.New()
	for key, value := range unflattenMap(merged) {
		l.v.Set(key, value)
	}
	return nil
}

// unflattenMap {"ioc.scan_root": "x"} -> {"ioc": {"scan_root": "x"}}
func unflattenMap(flat map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, value := range flat {
		setNestedValue(result, splitKey(key), value)
	}
	return result
}

func setNestedValue(m map[string]interface{}, keys []string, value interface{}) {
	if len(keys) == 0 {
		return
	}

	current := m
	for _, k := range keys[:len(keys)-1] {
		nested, ok := current[k].(map[string]interface{})
		if !ok {
			// 非 map 值被子 key 覆盖
			nested = make(map[string]interface{})
			current[k] = nested
		}
		current = nested
	}
	current[keys[len(keys)-1]] = value
}

func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	result := parts[:0]
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Unmarshal 解析到结构体（mapstructure tag）
func (l *Loader) Unmarshal(v interface{}) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey 解析单个配置段
func (l *Loader) UnmarshalKey(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}

// Get 获取配置值
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString 获取字符串配置
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt 获取整数配置
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool 获取布尔配置
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet 配置项是否存在
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings 全部配置（嵌套）
func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}

// GetLoadedFiles 已加载的配置文件（含不存在而被跳过的）
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// Reload 重新加载全部数据源
func (l *Loader) Reload() error {
	return l.Load()
}

// Package scanner discovers component descriptors registered in a
// namespace tree.
//
// Namespaces are slash separated, import-path style strings. Each namespace
// holds units: type units carry a descriptor loader, resource units stand for
// non-type artifacts and are skipped by the scanner.
package scanner

import (
	"sort"
	"strings"

	"github.com/KOMKZ/go-yogan-ioc/bean"
)

// UnitKind 单元类型
type UnitKind int

const (
	UnitType     UnitKind = iota // 类型单元
	UnitResource                 // 资源文件等非类型单元
)

// Unit 命名空间中的一个单元
type Unit struct {
	Name string
	Kind UnitKind
	Load func() (*bean.Descriptor, error)
}

// TypeUnit wraps a ready descriptor
func TypeUnit(d *bean.Descriptor) Unit {
	name := "<nil>"
	if d != nil && d.Type != nil {
		name = d.Type.String()
	}
	return Unit{
		Name: name,
		Kind: UnitType,
		Load: func() (*bean.Descriptor, error) { return d, nil },
	}
}

// LazyUnit defers descriptor construction to scan time
func LazyUnit(name string, load func() (*bean.Descriptor, error)) Unit {
	return Unit{Name: name, Kind: UnitType, Load: load}
}

// ResourceUnit a non-type artifact
func ResourceUnit(name string) Unit {
	return Unit{Name: name, Kind: UnitResource}
}

// Catalog 命名空间树
type Catalog struct {
	namespaces map[string][]Unit
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{namespaces: make(map[string][]Unit)}
}

// Add appends units to namespace, creating it when needed
func (c *Catalog) Add(namespace string, units ...Unit) *Catalog {
	ns := normalize(namespace)
	c.namespaces[ns] = append(c.namespaces[ns], units...)
	return c
}

// Descriptors is shorthand for adding type units
func (c *Catalog) Descriptors(namespace string, descs ...*bean.Descriptor) *Catalog {
	units := make([]Unit, 0, len(descs))
	for _, d := range descs {
		units = append(units, TypeUnit(d))
	}
	return c.Add(namespace, units...)
}

// Namespaces returns all namespaces sorted lexically
func (c *Catalog) Namespaces() []string {
	names := make([]string, 0, len(c.namespaces))
	for ns := range c.namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// Units returns the units of one namespace in declaration order
func (c *Catalog) Units(namespace string) []Unit {
	return c.namespaces[normalize(namespace)]
}

// under reports whether ns is root or below it
func under(ns, root string, recursive bool) bool {
	if ns == root {
		return true
	}
	if !recursive {
		return false
	}
	return root == "" || strings.HasPrefix(ns, root+"/")
}

func normalize(ns string) string {
	return strings.Trim(strings.TrimSpace(ns), "/")
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/KOMKZ/go-yogan-ioc/health"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// statusText 仅在输出到终端时着色
func statusText(w io.Writer, s health.Status) string {
	if f, ok := w.(*os.File); !ok || f != os.Stdout || color.NoColor {
		return string(s)
	}
	if s == health.StatusHealthy {
		return green(string(s))
	}
	return red(string(s))
}

type beanView struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	Proxy         string   `yaml:"proxy"`
	Implements    []string `yaml:"implements,omitempty"`
	Transactional []string `yaml:"transactional,omitempty"`
}

type beansView struct {
	Beans        []beanView `yaml:"beans"`
	ScanFailures []string   `yaml:"scan_failures,omitempty"`
}

func newBeansView(beans []*registry.Bean, failures []error) beansView {
	view := beansView{Beans: make([]beanView, 0, len(beans))}
	for _, b := range beans {
		v := beanView{
			Name:          b.Name,
			Type:          b.Descriptor.Type.String(),
			Proxy:         b.Proxy.String(),
			Transactional: b.Descriptor.TransactionalMethods(),
		}
		for _, it := range b.Descriptor.Interfaces {
			v.Implements = append(v.Implements, it.String())
		}
		view.Beans = append(view.Beans, v)
	}
	for _, err := range failures {
		view.ScanFailures = append(view.ScanFailures, err.Error())
	}
	return view
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

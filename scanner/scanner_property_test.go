package scanner

import (
	"context"
	"reflect"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"pgregory.net/rapid"
)

func TestScan_SetProperties(t *testing.T) {
	namespaces := []string{"app", "app/dao", "app/dao/mysql", "application", "other"}
	pool := []func() *bean.Descriptor{
		func() *bean.Descriptor { return bean.Of[*alpha]() },
		func() *bean.Descriptor { return bean.Of[*beta]() },
		func() *bean.Descriptor { return bean.Of[*gamma]() },
		func() *bean.Descriptor { return bean.Of[*delta]() },
	}

	rapid.Check(t, func(rt *rapid.T) {
		catalog := NewCatalog()
		n := rapid.IntRange(0, 20).Draw(rt, "units")
		for i := 0; i < n; i++ {
			ns := rapid.SampledFrom(namespaces).Draw(rt, "namespace")
			if rapid.Bool().Draw(rt, "resource") {
				catalog.Add(ns, ResourceUnit("res.yaml"))
				continue
			}
			catalog.Descriptors(ns, pool[rapid.IntRange(0, len(pool)-1).Draw(rt, "type")]())
		}
		root := rapid.SampledFrom([]string{"", "app", "app/dao", "missing"}).Draw(rt, "root")
		recursive := rapid.Bool().Draw(rt, "recursive")

		// 期望：按命名空间字典序、单元声明序的首次出现
		var want []reflect.Type
		seen := map[reflect.Type]bool{}
		for _, ns := range catalog.Namespaces() {
			if !under(ns, root, recursive) {
				continue
			}
			for _, u := range catalog.Units(ns) {
				if u.Kind != UnitType {
					continue
				}
				d, _ := u.Load()
				if !seen[d.Type] {
					seen[d.Type] = true
					want = append(want, d.Type)
				}
			}
		}

		result := New(catalog, WithRecursive(recursive)).Scan(context.Background(), root)
		got := typesOf(result.Descriptors)
		if len(got) != len(want) {
			rt.Fatalf("scan(%q, %v) = %v, want %v", root, recursive, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("scan(%q, %v)[%d] = %v, want %v", root, recursive, i, got[i], want[i])
			}
		}
		if len(result.Failures) != 0 {
			rt.Fatalf("unexpected failures: %v", result.Failures)
		}
	})
}

package internal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
)

func benchmarkContact() *contactRow {
	email := "ann@example.com"
	score := 9.5
	now := time.Now()
	return &contactRow{ID: uuid.New(), Name: "Ann", Email: &email, Age: 30, Score: &score, Active: true, CreatedAt: now, UpdatedAt: &now}
}

func benchmarkMapper(cache bool) *FieldMapper {
	return NewFieldMapper(rowmap.MappingConfig{TagName: "db", Policy: rowmap.PolicyLenient, CachePlans: cache},
		WithLogger(zap.NewNop().Sugar()))
}

func BenchmarkEncode(b *testing.B) {
	for _, cache := range []bool{false, true} {
		name := "uncached"
		if cache {
			name = "cached"
		}
		b.Run(name, func(b *testing.B) {
			m := benchmarkMapper(cache)
			record := benchmarkContact()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.Encode(record); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	for _, cache := range []bool{false, true} {
		name := "uncached"
		if cache {
			name = "cached"
		}
		b.Run(name, func(b *testing.B) {
			m := benchmarkMapper(cache)
			values, err := m.Encode(benchmarkContact())
			if err != nil {
				b.Fatal(err)
			}
			row := values.Row()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := rowmap.DecodeAs[contactRow](m, row); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

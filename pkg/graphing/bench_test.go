package graphing

import (
	"testing"
)

func benchPayload(n int) *Payload {
	p := &Payload{X: make([]int64, n), Y: map[string][]Sample{}}
	samples := make([]Sample, n)
	for i := range p.X {
		p.X[i] = int64(i) * 5000
		samples[i] = Sample{0, 0, float64(i * 1024)}
	}
	p.Y[MetricMappedMemoryUsed] = samples
	return p
}

func BenchmarkReshape(b *testing.B) {
	p := benchPayload(720)
	lf := utcLabels()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Reshape(p, MappedMemory, lf)
	}
}

func BenchmarkNormalOption(b *testing.B) {
	data, err := Reshape(benchPayload(720), MappedMemory, utcLabels())
	if err != nil {
		b.Fatal(err)
	}
	builder := NewBuilder(MappedMemory, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.DataOption(data)
		builder.NormalOption(data)
	}
}

func BenchmarkRowsFromPayload(b *testing.B) {
	p := benchPayload(720)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RowsFromPayload("agent-1", p)
	}
}

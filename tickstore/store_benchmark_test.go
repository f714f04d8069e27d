/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Benchmarks for Store's write paths.
// Run with: go test -bench=. -benchmem ./tickstore/
package tickstore

import (
	"testing"

	"github.com/qubic-labs/ticklog/arena"
)

// BenchmarkAppendTransaction measures the bump-allocation write path.
func BenchmarkAppendTransaction(b *testing.B) {
	a := arena.New()
	defer a.Release()
	p := testParams()
	p.MaxTicksPerEpoch = 2000
	s, err := NewStore(a, p, false)
	if err != nil {
		b.Fatal(err)
	}
	s.BeginEpoch(1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tx := &Transaction{Tick: 1000, Input: make([]byte, 16), InputSize: 16}
		if _, err := s.AppendTransaction(1000, i%int(p.NumberOfTransactionsPerTick), tx); err != nil {
			break
		}
	}
}

// BenchmarkBeginEpochSeamless measures the cost of a seamless epoch
// transition, dominated by the tick-data and tick-offset relocation
// copies.
func BenchmarkBeginEpochSeamless(b *testing.B) {
	a := arena.New()
	defer a.Release()
	p := testParams()
	s, err := NewStore(a, p, false)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	tick := uint32(100)
	for i := 0; i < b.N; i++ {
		s.BeginEpoch(tick)
		tick++ // stays inside the current window each time, i.e. always seamless
	}
}

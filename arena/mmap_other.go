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

//go:build !unix

package arena

// mapAnonymous falls back to a plain heap allocation on platforms without
// an anonymous mmap. Functionally equivalent, just not off-heap.
func mapAnonymous(size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	return make([]byte, size), nil
}

func unmapAnonymous(buf []byte) {
	// Nothing to release explicitly; the GC reclaims it.
}

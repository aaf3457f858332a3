// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trust

import "sync/atomic"

// Holder is a Source whose Store can be replaced while submissions are in
// flight. A submission that already took a snapshot keeps validating against
// it.
type Holder struct {
	current atomic.Pointer[Store]
}

// NewHolder returns a Holder serving s.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

// Current returns the Store most recently installed.
func (h *Holder) Current() *Store {
	return h.current.Load()
}

// Swap installs s and returns the Store it replaced.
func (h *Holder) Swap(s *Store) *Store {
	return h.current.Swap(s)
}

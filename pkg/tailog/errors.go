/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tailog

import "errors"

var (
	// ErrInvalidSize is returned for a negative size hint.
	ErrInvalidSize = errors.New("invalid region size")
	// ErrRegionTooSmall is returned when the resolved capacity is below shm.MinRegionSize.
	ErrRegionTooSmall = errors.New("message buffer size too small")
	// ErrRegionTooLarge is returned when the host cannot back the requested capacity.
	ErrRegionTooLarge = errors.New("message buffer size exceeds available memory")
	// ErrAllocateRegion wraps shared memory allocation failures.
	ErrAllocateRegion = errors.New("failed to allocate shared memory")
	// ErrSpawnWriter wraps failures to start the writer process.
	ErrSpawnWriter = errors.New("failed to fork monitor")
	// ErrWaitWriter wraps failures to wait for the writer process.
	ErrWaitWriter = errors.New("failed to wait for writer")
	// ErrBadRegionFd is returned when the inherited region descriptor is unusable.
	ErrBadRegionFd = errors.New("bad inherited region descriptor")
)

// Copyright 2025 TiKV Authors
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

package trace

import (
	"github.com/pingcap/errors"
)

// CategoryFlags is a set of enabled categories, one bit per Category.
type CategoryFlags uint64

// FlagOf returns the flag bit of category.
func FlagOf(category Category) CategoryFlags {
	return 1 << category
}

// ParseCategoryFlags builds flags from category names such as "scheduler".
func ParseCategoryFlags(names []string) (CategoryFlags, error) {
	var f CategoryFlags
	for _, name := range names {
		switch name {
		case CategoryScheduler.String():
			f = f.Set(FlagOf(CategoryScheduler))
		case CategoryMapLoad.String():
			f = f.Set(FlagOf(CategoryMapLoad))
		default:
			return 0, errors.Errorf("unknown trace category %q", name)
		}
	}
	return f, nil
}

// Has checks if the given flag is set.
func (f CategoryFlags) Has(flag CategoryFlags) bool {
	return f&flag != 0
}

// Set returns a new flags value with the given flag set.
func (f CategoryFlags) Set(flag CategoryFlags) CategoryFlags {
	return f | flag
}

// Clear returns a new flags value with the given flag cleared.
func (f CategoryFlags) Clear(flag CategoryFlags) CategoryFlags {
	return f &^ flag
}

// Toggle returns a new flags value with the given flag toggled.
func (f CategoryFlags) Toggle(flag CategoryFlags) CategoryFlags {
	return f ^ flag
}

// IsZero returns true if no flags are set.
func (f CategoryFlags) IsZero() bool {
	return f == 0
}

// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/canonical/sqlfrag/internal/parse"
)

// templateCacheSize bounds the number of parsed templates retained.
// Applications build fragments from a fixed set of template literals, so
// in practice the cache stays far below this.
const templateCacheSize = 1024

var once sync.Once
var templateCache *lru.Cache[string, *parse.ParsedTemplate]

// parseTemplate parses a template, consulting the process-wide cache so
// that repeated construction from the same template string skips the
// tokenizer. Parsed templates are immutable, so a cached value is shared
// freely between goroutines and between the fragments built from it.
// Templates that fail to parse are not cached.
func parseTemplate(template string) (*parse.ParsedTemplate, error) {
	once.Do(func() {
		// New only fails on a non-positive size.
		templateCache, _ = lru.New[string, *parse.ParsedTemplate](templateCacheSize)
	})
	if pt, ok := templateCache.Get(template); ok {
		return pt, nil
	}
	pt, err := parse.NewParser().Parse(template)
	if err != nil {
		return nil, err
	}
	templateCache.Add(template, pt)
	return pt, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog holds the static poll questions served by GET /poll.
//
// The built-in catalog comes from Default. A JSON file with the same shape as
// the GET /poll response can replace it (see cliparse CatalogPath). Validate is
// only consulted when strict catalog checking is switched on.
package catalog

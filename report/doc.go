// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package report renders survey results as documents. PDF draws the
// survey header, a participation summary and one bar per option.
package report

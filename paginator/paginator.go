// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package paginator pages arbitrary SELECT queries with LIMIT/OFFSET.
package paginator

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type PaginatedResponse[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	PrevPage    *int `json:"prev_page"`
	NextPage    *int `json:"next_page"`
	TotalItems  int  `json:"total_items"`
}

// Queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// PaginateQuery counts the rows of query, then selects one page of it.
// query uses ? placeholders and must carry its own ORDER BY.
func PaginateQuery[T any](ctx context.Context, q Queryer, query string, args []any, page, limit int) (*PaginatedResponse[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit

	// Count total rows using a subquery
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS total_count", query)
	var totalItems int
	if err := sqlx.GetContext(ctx, q, &totalItems, q.Rebind(countQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	totalPages := (totalItems + limit - 1) / limit

	paginatedQuery := q.Rebind(query + " LIMIT ? OFFSET ?")
	pageArgs := append(append([]any{}, args...), limit, offset)

	items := []T{}
	if err := sqlx.SelectContext(ctx, q, &items, paginatedQuery, pageArgs...); err != nil {
		return nil, fmt.Errorf("failed to select page: %w", err)
	}

	return &PaginatedResponse[T]{
		Items:       items,
		CurrentPage: page,
		PageSize:    limit,
		TotalPages:  totalPages,
		PrevPage:    prevPage(page),
		NextPage:    nextPage(page, totalPages),
		TotalItems:  totalItems,
	}, nil
}

func prevPage(page int) *int {
	if page <= 1 {
		return nil
	}
	p := page - 1
	return &p
}

func nextPage(page, totalPages int) *int {
	if page >= totalPages {
		return nil
	}
	p := page + 1
	return &p
}

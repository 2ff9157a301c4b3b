// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/condo-survey/models"
)

// BuildingMetaKey is the usermeta key holding a resident's building id.
const BuildingMetaKey = "condo_building"

// capabilityPattern matches granted roles in a PHP-serialized
// capabilities array, e.g. a:1:{s:10:"subscriber";b:1;}.
var capabilityPattern = regexp.MustCompile(`s:\d+:"([^"]+)";b:1;`)

// ParseCapabilities extracts the roles granted by a serialized
// capabilities value.
func ParseCapabilities(serialized string) []string {
	matches := capabilityPattern.FindAllStringSubmatch(serialized, -1)
	roles := make([]string, 0, len(matches))
	for _, m := range matches {
		roles = append(roles, m[1])
	}
	return roles
}

// WordPress reads residents from a WordPress users/usermeta table pair.
// It never writes.
type WordPress struct {
	db     *sqlx.DB
	prefix string
	voter  *Rule
	admin  *Rule
}

func NewWordPress(conn *sqlx.DB, prefix string, voter, admin *Rule) *WordPress {
	if prefix == "" {
		prefix = "wp_"
	}
	return &WordPress{db: conn, prefix: prefix, voter: voter, admin: admin}
}

type userRow struct {
	ID           int64          `db:"id"`
	DisplayName  string         `db:"display_name"`
	Email        string         `db:"email"`
	Capabilities sql.NullString `db:"capabilities"`
	Building     sql.NullString `db:"building"`
}

func (w *WordPress) userQuery(where string) string {
	return fmt.Sprintf(`
		SELECT
			u.id AS id,
			u.display_name AS display_name,
			u.user_email AS email,
			MAX(CASE WHEN m.meta_key = ? THEN m.meta_value END) AS capabilities,
			MAX(CASE WHEN m.meta_key = ? THEN m.meta_value END) AS building
		FROM %[1]susers u
		LEFT JOIN %[1]susermeta m ON m.user_id = u.id AND m.meta_key IN (?, ?)
		%[2]s
		GROUP BY u.id, u.display_name, u.user_email
		ORDER BY u.id
	`, w.prefix, where)
}

func (w *WordPress) metaArgs() []any {
	capKey := w.prefix + "capabilities"
	return []any{capKey, BuildingMetaKey, capKey, BuildingMetaKey}
}

func (w *WordPress) identity(row userRow) (models.Identity, error) {
	env := RuleEnv{UserID: row.ID, Roles: ParseCapabilities(row.Capabilities.String)}

	ident := models.Identity{
		ID:          row.ID,
		Exists:      true,
		DisplayName: row.DisplayName,
		Email:       row.Email,
	}

	if row.Building.Valid {
		if b, err := strconv.ParseInt(strings.TrimSpace(row.Building.String), 10, 64); err == nil {
			ident.BuildingID = &b
			env.Building = b
			env.HasBuilding = true
		}
	}

	var err error
	if ident.Eligible, err = w.voter.Match(env); err != nil {
		return ident, fmt.Errorf("voter rule for user %d: %w", row.ID, err)
	}
	if ident.Admin, err = w.admin.Match(env); err != nil {
		return ident, fmt.Errorf("admin rule for user %d: %w", row.ID, err)
	}
	return ident, nil
}

func (w *WordPress) Resolve(ctx context.Context, userID int64) (models.Identity, error) {
	var row userRow
	args := append(w.metaArgs(), userID)
	err := w.db.GetContext(ctx, &row, w.db.Rebind(w.userQuery("WHERE u.id = ?")), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{ID: userID}, nil
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	return w.identity(row)
}

func (w *WordPress) Eligible(ctx context.Context, buildingID *int64) ([]models.Identity, error) {
	rows, err := w.selectUsers(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	eligible := []models.Identity{}
	for _, row := range rows {
		ident, err := w.identity(row)
		if err != nil {
			return nil, err
		}
		if ident.Eligible && ident.InBuilding(buildingID) {
			eligible = append(eligible, ident)
		}
	}
	return eligible, nil
}

func (w *WordPress) Describe(ctx context.Context, userIDs []int64) (map[int64]models.Identity, error) {
	out := make(map[int64]models.Identity, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	ids := make([]any, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id
	}

	rows, err := w.selectUsers(ctx, "WHERE u.id IN ("+placeholders+")", ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ident, err := w.identity(row)
		if err != nil {
			return nil, err
		}
		out[ident.ID] = ident
	}
	return out, nil
}

func (w *WordPress) selectUsers(ctx context.Context, where string, args []any) ([]userRow, error) {
	rows := []userRow{}
	err := w.db.SelectContext(ctx, &rows, w.db.Rebind(w.userQuery(where)), append(w.metaArgs(), args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return rows, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/danielhkuo/condo-survey/directory"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/testutil"
)

func mustRule(t *testing.T, src string) *directory.Rule {
	t.Helper()
	r, err := directory.CompileRule(src)
	if err != nil {
		t.Fatalf("CompileRule(%q): %v", src, err)
	}
	return r
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{`a:1:{s:10:"subscriber";b:1;}`, []string{"subscriber"}},
		{`a:2:{s:13:"administrator";b:1;s:6:"editor";b:1;}`, []string{"administrator", "editor"}},
		{`a:1:{s:10:"subscriber";b:0;}`, []string{}},
		{``, []string{}},
	}

	for _, tt := range tests {
		got := directory.ParseCapabilities(tt.in)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ParseCapabilities(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestCompileRule(t *testing.T) {
	if _, err := directory.CompileRule(`roles +`); err == nil {
		t.Error("Expected syntax error")
	}
	if _, err := directory.CompileRule(`user_id + 1`); err == nil {
		t.Error("Expected non-boolean rule to be rejected")
	}

	r := mustRule(t, `"owner" in roles && has_building && building == 3`)
	tests := []struct {
		env      directory.RuleEnv
		expected bool
	}{
		{directory.RuleEnv{Roles: []string{"owner"}, HasBuilding: true, Building: 3}, true},
		{directory.RuleEnv{Roles: []string{"owner"}, HasBuilding: true, Building: 4}, false},
		{directory.RuleEnv{Roles: []string{"tenant"}, HasBuilding: true, Building: 3}, false},
		{directory.RuleEnv{Roles: []string{"owner"}}, false},
	}
	for _, tt := range tests {
		got, err := r.Match(tt.env)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.expected {
			t.Errorf("Match(%+v) = %v, expected %v", tt.env, got, tt.expected)
		}
	}
}

func setupWordPress(t *testing.T) *directory.WordPress {
	t.Helper()
	conn := testutil.SetupTestDB(t)

	testutil.AddWordPressUser(t, conn, 1, "Board Admin", []string{"administrator"}, nil)
	testutil.AddWordPressUser(t, conn, 2, "Ana Resident", []string{"subscriber"}, testutil.Int64(1))
	testutil.AddWordPressUser(t, conn, 3, "Bo Resident", []string{"subscriber"}, testutil.Int64(2))
	testutil.AddWordPressUser(t, conn, 4, "Cy Editor", []string{"editor"}, testutil.Int64(1))

	return directory.NewWordPress(conn, "wp_",
		mustRule(t, directory.DefaultVoterRule),
		mustRule(t, directory.DefaultAdminRule))
}

func TestWordPressResolve(t *testing.T) {
	wp := setupWordPress(t)
	ctx := context.Background()

	tests := []struct {
		id       int64
		exists   bool
		eligible bool
		admin    bool
		building *int64
	}{
		{1, true, true, true, nil},
		{2, true, true, false, testutil.Int64(1)},
		{4, true, false, false, testutil.Int64(1)},
		{77, false, false, false, nil},
	}

	for _, tt := range tests {
		ident, err := wp.Resolve(ctx, tt.id)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", tt.id, err)
		}
		if ident.Exists != tt.exists || ident.Eligible != tt.eligible || ident.Admin != tt.admin {
			t.Errorf("Resolve(%d) = %+v", tt.id, ident)
		}
		if !reflect.DeepEqual(ident.BuildingID, tt.building) {
			t.Errorf("Resolve(%d) building = %v, expected %v", tt.id, ident.BuildingID, tt.building)
		}
	}

	ident, _ := wp.Resolve(ctx, 2)
	if ident.DisplayName != "Ana Resident" || ident.Email != "user2@condo.example.com" {
		t.Errorf("Unexpected identity %+v", ident)
	}
}

func TestWordPressEligible(t *testing.T) {
	wp := setupWordPress(t)
	ctx := context.Background()

	all, err := wp.Eligible(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ids := identityIDs(all); !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("Expected eligible 1,2,3 got %v", ids)
	}

	building1, err := wp.Eligible(ctx, testutil.Int64(1))
	if err != nil {
		t.Fatal(err)
	}
	if ids := identityIDs(building1); !reflect.DeepEqual(ids, []int64{2}) {
		t.Errorf("Expected only resident 2 in building 1, got %v", ids)
	}
}

func TestWordPressDescribe(t *testing.T) {
	wp := setupWordPress(t)

	names, err := wp.Describe(context.Background(), []int64{2, 3, 77})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[3].DisplayName != "Bo Resident" {
		t.Errorf("Unexpected names %+v", names)
	}

	empty, err := wp.Describe(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty result, got %v, %v", empty, err)
	}
}

func TestStatic(t *testing.T) {
	d := directory.NewStatic(
		models.Identity{ID: 1, Eligible: true, Admin: true},
		models.Identity{ID: 2, Eligible: true, BuildingID: testutil.Int64(5)},
		models.Identity{ID: 3},
	)
	ctx := context.Background()

	ident, _ := d.Resolve(ctx, 3)
	if !ident.Exists || ident.Eligible {
		t.Errorf("Expected existing ineligible user, got %+v", ident)
	}
	unknown, _ := d.Resolve(ctx, 9)
	if unknown.Exists {
		t.Error("Expected unknown user")
	}

	scoped, _ := d.Eligible(ctx, testutil.Int64(5))
	if ids := identityIDs(scoped); !reflect.DeepEqual(ids, []int64{2}) {
		t.Errorf("Expected [2], got %v", ids)
	}
}

func identityIDs(idents []models.Identity) []int64 {
	ids := make([]int64, len(idents))
	for i, ident := range idents {
		ids[i] = ident.ID
	}
	return ids
}

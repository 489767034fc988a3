package database

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"restaurant/internal/model"
)

func TestLoadSeed_ShippedFile(t *testing.T) {
	data, err := LoadSeed(filepath.Join("..", "..", "configs", "seed.yaml"))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	codes := make([]string, 0, len(data.Permissions))
	for _, p := range data.Permissions {
		codes = append(codes, p.Code)
	}
	for name, role := range data.Roles {
		for _, code := range role.Permissions {
			if code != "*" && !slices.Contains(codes, code) {
				t.Errorf("role %s grants unknown permission %q", name, code)
			}
		}
	}

	for _, key := range []string{model.SettingTaxRate, model.SettingMinOrderAmount, model.SettingServiceChargeFixed, model.SettingServiceChargeRate, model.SettingTaxIncludeServiceCharge} {
		if _, ok := data.Settings[key]; !ok {
			t.Errorf("setting %s not seeded", key)
		}
	}
	if data.Admin == nil || data.Admin.Username == "" {
		t.Error("initial admin missing")
	}
}

func TestLoadSeed_RejectsIncompletePermission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("permissions:\n  - { code: menu.read, name: View menu }\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeed(path); err == nil {
		t.Error("expected an error for a permission without group")
	}
}

func TestResolvePermissions(t *testing.T) {
	byCode := map[string]model.Permission{
		"menu.read":   {Code: "menu.read"},
		"orders.read": {Code: "orders.read"},
		"audit.read":  {Code: "audit.read"},
	}

	got := resolvePermissions([]string{"orders.read", "missing"}, byCode)
	if len(got) != 1 || got[0].Code != "orders.read" {
		t.Errorf("explicit = %+v", got)
	}
	if all := resolvePermissions([]string{"*"}, byCode); len(all) != 3 {
		t.Errorf("wildcard granted %d permissions, want 3", len(all))
	}
}

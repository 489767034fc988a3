package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"restaurant/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedData is the shape of configs/seed.yaml.
type SeedData struct {
	Permissions []SeedPermission    `yaml:"permissions"`
	Roles       map[string]SeedRole `yaml:"roles"`
	Admin       *SeedAdmin          `yaml:"admin"`
	Settings    map[string]string   `yaml:"settings"`
	Tables      []SeedTable         `yaml:"tables"`
}

type SeedPermission struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
}

type SeedRole struct {
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"` // "*" grants every seeded permission
}

type SeedAdmin struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SeedTable struct {
	Number   int    `yaml:"number"`
	Capacity int    `yaml:"capacity"`
	Location string `yaml:"location"`
}

// LoadSeed parses a seed file.
func LoadSeed(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for _, p := range data.Permissions {
		if p.Code == "" || p.Group == "" {
			return nil, fmt.Errorf("seed permission %q is missing code or group", p.Name)
		}
	}
	return &data, nil
}

// Seed upserts permissions and system roles, then creates settings, tables and the
// first admin only when they are missing. Existing rows are never overwritten.
func Seed(ctx context.Context, db *gorm.DB, data *SeedData) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permByCode := make(map[string]model.Permission, len(data.Permissions))
		for _, sp := range data.Permissions {
			p := model.Permission{Code: sp.Code, Name: sp.Name, Group: sp.Group}
			if err := tx.Where(model.Permission{Code: sp.Code}).
				Assign(model.Permission{Name: sp.Name, Group: sp.Group}).
				FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("failed to seed permission '%s': %w", sp.Code, err)
			}
			permByCode[p.Code] = p
		}

		for name, def := range data.Roles {
			role := model.Role{Name: name, Description: def.Description, IsSystem: true}
			if err := tx.Where(model.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role '%s': %w", name, err)
			}
			perms := resolvePermissions(def.Permissions, permByCode)
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("failed to assign permissions to role '%s': %w", name, err)
			}
		}

		for key, value := range data.Settings {
			s := model.Setting{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
				return fmt.Errorf("failed to seed setting '%s': %w", key, err)
			}
		}

		for _, st := range data.Tables {
			t := model.Table{Number: st.Number, Capacity: st.Capacity, Location: st.Location, Status: model.TableAvailable}
			if err := tx.Where(model.Table{Number: st.Number}).FirstOrCreate(&t).Error; err != nil {
				return fmt.Errorf("failed to seed table %d: %w", st.Number, err)
			}
		}

		if data.Admin != nil {
			return seedAdmin(tx, data.Admin)
		}
		return nil
	})
}

func seedAdmin(tx *gorm.DB, a *SeedAdmin) error {
	var existing model.User
	err := tx.Where("username = ?", a.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := model.User{Username: a.Username, Email: a.Email, Password: string(hash), Role: "admin", IsActive: true}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	log.Info().Str("username", a.Username).Msg("Seeded initial admin account")
	return nil
}

func resolvePermissions(codes []string, byCode map[string]model.Permission) []model.Permission {
	perms := make([]model.Permission, 0, len(codes))
	for _, code := range codes {
		if code == "*" {
			perms = perms[:0]
			for _, p := range byCode {
				perms = append(perms, p)
			}
			return perms
		}
		if p, ok := byCode[code]; ok {
			perms = append(perms, p)
		}
	}
	return perms
}

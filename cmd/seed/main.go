// cmd/seed/main.go: creates the default roles, their permissions and an
// admin account. Safe to re-run; the admin password is reset each time.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Zeek-James/pem-zee/internal/config"
	"github.com/Zeek-James/pem-zee/internal/infra"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

var (
	resources = []string{"harvest", "milling", "storage", "sales", "reports"}
	actions   = []string{"create", "read", "update", "delete"}
)

// rolePermissions lists the grants per role; Admin gets everything.
var rolePermissions = map[string]func(resource, action string) bool{
	model.RoleAdmin: func(string, string) bool { return true },
	"Manager":       func(_, action string) bool { return action != "delete" },
	"Operator": func(resource, action string) bool {
		return resource != "reports" && (action == "create" || action == "read")
	},
	"Viewer": func(_, action string) bool { return action == "read" },
}

var roleDescriptions = map[string]string{
	model.RoleAdmin: "Full access",
	"Manager":       "Records and edits all ledger entries, exports reports",
	"Operator":      "Records harvests, milling runs and sales",
	"Viewer":        "Read-only access",
}

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@pemzee.local", "admin email")
	password := flag.String("password", "", "admin password (or SEED_ADMIN_PASSWORD)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env is optional; values already in the environment win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	if *password == "" {
		*password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if len(*password) < 8 {
		log.Fatal().Msg("admin password must be at least 8 characters (use -password or SEED_ADMIN_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, time.Duration(cfg.DBSlowQueryMs)*time.Millisecond)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	for name, grants := range rolePermissions {
		var perms []model.Permission
		for _, r := range resources {
			for _, a := range actions {
				if grants(r, a) {
					perms = append(perms, model.Permission{
						Resource:    r,
						Action:      a,
						Description: fmt.Sprintf("%s %s records", a, r),
					})
				}
			}
		}
		role := &model.Role{Name: name, Description: roleDescriptions[name]}
		if err := users.EnsureRole(ctx, role, perms); err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("failed to seed role")
		}
		log.Info().Str("role", name).Int("permissions", len(perms)).Msg("role ready")
	}

	admin, err := users.FindRoleByName(ctx, model.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("admin role missing after seeding")
	}
	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	user := model.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		FullName:     "Administrator",
		RoleID:       admin.ID,
		IsActive:     true,
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "email", "role_id", "is_active"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin user")
	}
	log.Info().Str("username", *username).Msg("admin user created/updated")
}

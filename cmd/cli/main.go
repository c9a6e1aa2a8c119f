package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"market-service/internal/auth"
	"market-service/internal/domain"
	"market-service/internal/infra/db"
	"market-service/internal/logger"
	"market-service/internal/repository/gormrepo"

	"gorm.io/gorm"
)

const usage = "expected 'add-admin' or 'migrate' subcommand"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		cmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
		name := cmd.String("name", "Administrator", "Display name for the admin")
		phone := cmd.String("phone", "", "Login phone number")
		password := cmd.String("password", "", "Login password")
		driver, dsn := dbFlags(cmd)
		_ = cmd.Parse(os.Args[2:])
		if *phone == "" || *password == "" {
			fmt.Println("phone and password are required")
			cmd.PrintDefaults()
			os.Exit(1)
		}
		addAdmin(open(*driver, *dsn), *name, *phone, *password)
	case "migrate":
		cmd := flag.NewFlagSet("migrate", flag.ExitOnError)
		driver, dsn := dbFlags(cmd)
		_ = cmd.Parse(os.Args[2:])
		open(*driver, *dsn)
		fmt.Println("Schema is up to date.")
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func dbFlags(cmd *flag.FlagSet) (driver, dsn *string) {
	driver = cmd.String("driver", envOr("DB_DRIVER", db.DriverMySQL), "mysql, postgres or sqlite")
	dsn = cmd.String("dsn", os.Getenv("DB_DSN"), "Database connection string")
	return driver, dsn
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// open connects and migrates so the CLI can run before the server ever has.
func open(driver, dsn string) *gorm.DB {
	log := logger.Component(envOr("LOG_LEVEL", "warn"), "text", "CLI")
	if dsn == "" {
		log.Fatal("a dsn is required, pass -dsn or set DB_DSN")
	}
	gdb, err := db.Open(db.Options{Driver: driver, DSN: dsn}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}
	return gdb
}

func addAdmin(gdb *gorm.DB, name, phone, password string) {
	log := logger.Component(envOr("LOG_LEVEL", "warn"), "text", "CLI")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer db.Close(gdb)

	users := gormrepo.NewUserRepository(gdb)
	existing, err := users.FindByPhone(ctx, phone)
	if err != nil {
		log.WithError(err).Fatal("failed to look up phone")
	}
	if existing != nil {
		log.Fatalf("a user with phone %s already exists", phone)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	u := &domain.User{
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserApproved,
	}
	if err := users.Create(ctx, u); err != nil {
		log.WithError(err).Fatal("failed to create admin")
	}
	fmt.Printf("Admin '%s' created with id %d.\n", phone, u.ID)
}

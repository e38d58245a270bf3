// Command createadmin provisions an administrator account. It is the only
// way to create a user with admin rights; the public registration endpoint
// always creates regular users.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"authkeeper/internal/server/auth"
	"authkeeper/internal/server/config"
	"authkeeper/internal/server/repositories/repomanager"
	"authkeeper/internal/server/services"
	"authkeeper/internal/shared"
)

func main() {

	_ = godotenv.Load()

	email := flag.String("email", "", "admin email")
	username := flag.String("username", "", "admin username")
	fullName := flag.String("full-name", "", "full name (optional)")
	flag.Parse()

	if *email == "" || *username == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.JWTAlgorithm)
	if err != nil {
		log.Fatalf("token codec init error: %v", err)
	}

	svc := services.NewUserService(db, m, codec, &auth.BcryptHasher{}, cfg)

	in := services.RegisterInput{
		Email:    *email,
		Username: *username,
		Password: string(password),
		IsAdmin:  true,
	}
	if *fullName != "" {
		in.FullName = fullName
	}

	user, err := svc.Register(ctx, in)
	shared.WipeByteArray(password)
	if err != nil {
		log.Fatalf("creating admin: %v", err)
	}

	fmt.Printf("admin %q created with id %d\n", user.Username, user.ID)
}

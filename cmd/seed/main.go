// seed creates demo accounts with filled-in profiles and prints a session
// token for each. Re-running it is safe.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/account-service/config"
	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/identity"
	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/lmittmann/tint"
)

const seedPassword = "seed-password-1"

type account struct {
	email     string
	firstName string
	lastName  string
	phone     string
	dob       string
	postcode  string
}

var accounts = []account{
	{"ada@seed.local", "Ada", "Lovelace", "+447700900001", "1990-12-10", "SW1A 1AA"},
	{"grace@seed.local", "Grace", "Hopper", "+12025550143", "1986-12-09", "10001"},
	{"alan@seed.local", "Alan", "Turing", "+447700900002", "1992-06-23", "CB2 1TN"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v (run: direnv allow)", err)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn, TimeFormat: time.Kitchen}))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	issuer := token.NewIssuer([]byte(cfg.JWTSecret))
	provider := identity.NewProvider(cfg.Env, cfg.IdentityProviderURL, cfg.IdentityProviderKey, cfg.IdentityProviderTimeout, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, provider, issuer, logger)
	profileUsecase := usecase.NewProfileUsecase(userRepo)

	var lastToken string
	for _, a := range accounts {
		user, err := signup(ctx, authUsecase, userRepo, a)
		if err != nil {
			log.Fatalf("seed %s: %v", a.email, err)
		}

		dob, err := time.Parse("2006-01-02", a.dob)
		if err != nil {
			log.Fatalf("seed %s: %v", a.email, err)
		}
		if _, err := profileUsecase.UpdateProfile(ctx, &domain.Identity{ID: user.ID}, usecase.UpdateProfileInput{
			PhoneNumber: &a.phone,
			DateOfBirth: &dob,
			Postcode:    &a.postcode,
		}); err != nil {
			log.Fatalf("seed %s profile: %v", a.email, err)
		}

		tok, expiresAt, err := issuer.Issue(user.ID, user.Email)
		if err != nil {
			log.Fatalf("seed %s token: %v", a.email, err)
		}
		lastToken = tok

		fmt.Printf("  %-20s  id=%s\n", a.email, user.ID)
		fmt.Printf("  %-20s  token expires %s\n", "", expiresAt.Format(time.RFC3339))
	}

	fmt.Println()
	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("    export JWT=%s\n", lastToken)
	fmt.Printf("    curl -s http://localhost:%s/profile -H \"Authorization: Bearer $JWT\"\n", cfg.Port)
	fmt.Println()
	if cfg.IdentityProviderURL != "" {
		fmt.Println("  Accounts are registered at the identity provider with password:", seedPassword)
	} else {
		fmt.Println("  No IDENTITY_PROVIDER_URL set: only local profiles were created, use the tokens above.")
	}
}

// signup registers a through the auth flow. An account seeded by an earlier
// run is looked up instead.
func signup(ctx context.Context, uc *usecase.AuthUsecase, users repository.UserRepository, a account) (*domain.User, error) {
	res, err := uc.Signup(ctx, usecase.SignupInput{
		Email:     a.email,
		Password:  seedPassword,
		FirstName: a.firstName,
		LastName:  a.lastName,
	})
	if err == nil {
		return res.User, nil
	}

	var provErr *domain.ProviderError
	if !errors.Is(err, domain.ErrUserExists) && !errors.As(err, &provErr) {
		return nil, err
	}
	return users.UpsertByEmail(ctx, a.email, repository.CreateUserInput{
		Email:     a.email,
		FirstName: a.firstName,
		LastName:  a.lastName,
	})
}

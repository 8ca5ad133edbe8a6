// Command setrole grants a role to an existing Firebase user. Use it to
// bootstrap the first admin, who can then manage roles through the API.
//
//	go run ./cmd/setrole -uid <firebase-uid> -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/config"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/repository"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	uid := flag.String("uid", "", "Firebase Auth uid")
	email := flag.String("email", "", "look the user up by email instead of uid")
	role := flag.String("role", "admin", "admin | manager | staff")
	flag.Parse()

	if *uid == "" && *email == "" {
		fmt.Fprintln(os.Stderr, "usage: setrole -uid <uid> | -email <email> [-role admin|manager|staff]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fb, err := infra.NewFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise firebase")
	}
	defer fb.Close()

	if *uid == "" {
		rec, err := fb.Auth.GetUserByEmail(ctx, *email)
		if err != nil {
			log.Fatal().Err(err).Str("email", *email).Msg("user lookup failed")
		}
		*uid = rec.UID
	}

	u, err := service.SetUserRole(ctx, fb.Auth, repository.NewUserRepository(fb.Firestore), *uid, *role)
	if err != nil {
		log.Fatal().Err(err).Str("uid", *uid).Msg("set role failed")
	}
	fmt.Printf("%s (%s) is now %s; the change applies after the user's next token refresh\n", u.UID, u.Email, u.Role)
}

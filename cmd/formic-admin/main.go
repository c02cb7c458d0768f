// formic-admin bootstraps a super-admin account so the first admin
// registrations can be approved.
package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/formic/formic/formic"
	"github.com/formic/formic/formic/config"
)

func main() {
	email := flag.String("email", "", "email address of the super-admin account")
	password := flag.String("password", "", "password for the account")
	name := flag.String("name", "Super Admin", "display name for the account")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg := config.Load()
	srv, err := formic.NewService(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to open service database: %v", err)
	}

	user, err := srv.CreateSuperAdmin(*email, *password, *name)
	if err != nil {
		log.Fatalf("failed to create super-admin: %v", err)
	}
	fmt.Printf("super-admin ready: %s (%s)\n", user.Email, user.ID)
}

// Command grant-role sets the role of an existing account. It is the only way
// to provision the first owner; after that owners can use the admin API.
//
//	go run ./cmd/grant-role -email someone@example.com -role admin
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/anonto42/biolink/backend/pkg/config"
)

func main() {
	email := flag.String("email", "", "email of the account to update")
	roleFlag := flag.String("role", string(models.RoleAdmin), "role to grant: user, admin or owner")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}
	var role models.Role
	if err := role.UnmarshalText([]byte(*roleFlag)); err != nil {
		log.Fatal(err)
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.InitMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	repos := repositories.NewMongoSet(db.Database)
	accounts := services.NewAccountService(repos, nil, noopPublisher{}, services.WithLogger(logger))
	user, err := accounts.AssignRole(ctx, *email, role)
	if err != nil {
		log.Fatalf("Failed to grant role: %v", err)
	}
	logger.Info("Role granted", "user_id", user.ID, "email", user.Email, "role", user.Role)
}

// noopPublisher satisfies services.Publisher; role changes never alter a public page.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string) error               { return nil }
func (noopPublisher) PublishByPageID(context.Context, string) error       { return nil }
func (noopPublisher) PublishRename(context.Context, string, string) error { return nil }
func (noopPublisher) PublishRemoved(context.Context, string) error        { return nil }

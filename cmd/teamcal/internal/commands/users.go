package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/logger"
	"gopkg.in/yaml.v3"
)

type AddUserCmd struct {
	Username  string `arg:"" help:"Login name"`
	Password  string `arg:"" help:"Password"`
	CompanyID string `arg:"" help:"Company UUID, created if it doesn't exist"`

	Email     string        `help:"Email address participants are matched on"`
	FirstName string        `help:"First name"`
	LastName  string        `help:"Last name"`
	Timezone  string        `help:"IANA timezone" default:"Europe/Warsaw"`
	Postgres  PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *AddUserCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	companyID, err := uuid.Parse(c.CompanyID)
	if err != nil {
		return fmt.Errorf("invalid company id %q: %w", c.CompanyID, err)
	}

	stores, closeStores, err := c.Postgres.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	svc := calendar.NewService(stores, calendar.Options{})

	user, err := svc.AddUser(ctx, calendar.AddUserInput{
		Username:  c.Username,
		Password:  c.Password,
		CompanyID: companyID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Timezone:  c.Timezone,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (id %d) in company %s\n", user.Username, user.UserID, companyID)
	return nil
}

type ImportUsersCmd struct {
	File     string        `help:"YAML file listing users" required:"" type:"existingfile"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *ImportUsersCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	entries, err := readUserFile(c.File)
	if err != nil {
		return err
	}

	stores, closeStores, err := c.Postgres.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	created, err := importUsers(ctx, calendar.NewService(stores, calendar.Options{}), entries)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d users\n", created, len(entries))
	return nil
}

type RemoveUserCmd struct {
	Username string        `arg:"" help:"Login name of the user to delete"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *RemoveUserCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	stores, closeStores, err := c.Postgres.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	if err := calendar.NewService(stores, calendar.Options{}).DeleteUser(ctx, c.Username); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return fmt.Errorf("user %q not found", c.Username)
		}
		return err
	}

	fmt.Printf("Removed user %s\n", c.Username)
	return nil
}

// userFile is the import format:
//
//	users:
//	  - username: alice
//	    password: s3cret
//	    company_id: 0190b6d4-...
//	    email: alice@example.com
type userFile struct {
	Users []userEntry `yaml:"users"`
}

type userEntry struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	CompanyID string `yaml:"company_id"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Timezone  string `yaml:"timezone"`
}

func readUserFile(path string) ([]calendar.AddUserInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}
	return parseUsers(data)
}

func parseUsers(data []byte) ([]calendar.AddUserInput, error) {
	var f userFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse user file: %w", err)
	}

	inputs := make([]calendar.AddUserInput, 0, len(f.Users))
	for i, u := range f.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("user %d: username is required", i+1)
		}

		companyID, err := uuid.Parse(u.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("user %q: invalid company id %q: %w", u.Username, u.CompanyID, err)
		}

		inputs = append(inputs, calendar.AddUserInput{
			Username:  u.Username,
			Password:  u.Password,
			CompanyID: companyID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Timezone:  u.Timezone,
		})
	}

	return inputs, nil
}

// importUsers creates each user, skipping usernames that already exist so a file can be
// applied more than once. It returns how many users were created.
func importUsers(ctx context.Context, svc *calendar.Service, inputs []calendar.AddUserInput) (int, error) {
	created := 0
	for _, in := range inputs {
		_, err := svc.AddUser(ctx, in)
		if err != nil {
			var ve *calendar.ValidationError
			if errors.As(err, &ve) && ve.Field == "username" {
				zerolog.Ctx(ctx).Warn().Str("username", in.Username).Msg("Skipping existing user")
				continue
			}
			return created, fmt.Errorf("user %q: %w", in.Username, err)
		}
		created++
	}
	return created, nil
}

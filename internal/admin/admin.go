// Package admin implements the operator command line used to bootstrap
// tenant companies and their first users.
//
// Usage:
//
//	admin <command> [flags]
//
// Commands:
//
//	company-create      -name N -domain D
//	company-activate    -id ID
//	company-deactivate  -id ID
//	user-create         -email E -first F -last L -company ID [-role R] [-password P]
//
// Server configuration flags (-d, -v, ...) may be mixed in; they are
// consumed by config.LoadConfig.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/hrscreen/internal/flagx"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"github.com/go-playground/validator/v10"
)

// ErrUsage is returned for an unknown command or bad arguments.
var ErrUsage = errors.New("usage: admin <company-create|company-activate|company-deactivate|user-create> [flags]")

type CompanyService interface {
	CreateCompany(ctx context.Context, name, domain string) (*models.Company, error)
	SetCompanyActive(ctx context.Context, id string, active bool) error
}

type UserRegistrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
}

type CLI struct {
	companies CompanyService
	users     UserRegistrar
	out       io.Writer
	validate  *validator.Validate
}

func NewCLI(c CompanyService, u UserRegistrar, out io.Writer) *CLI {
	return &CLI{
		companies: c,
		users:     u,
		out:       out,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type companyCreateArgs struct {
	Name   string `validate:"required,max=200"`
	Domain string `validate:"required,fqdn"`
}

type companyIDArgs struct {
	ID string `validate:"required,uuid"`
}

type userCreateArgs struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	CompanyID string `validate:"required,uuid"`
	Role      string `validate:"omitempty,oneof=RECRUITER HIRING_MANAGER ADMIN"`
	Password  string `validate:"required,min=8,max=72"`
}

// Run executes the command named by args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "company-create":
		return c.companyCreate(ctx, rest)
	case "company-activate":
		return c.companySetActive(ctx, rest, true)
	case "company-deactivate":
		return c.companySetActive(ctx, rest, false)
	case "user-create":
		return c.userCreate(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
	}
}

// parse parses the flags fs owns out of args, leaving config flags alone.
func parse(fs *flag.FlagSet, args []string) error {
	var own []string
	fs.VisitAll(func(f *flag.Flag) {
		own = append(own, "-"+f.Name, "--"+f.Name)
	})
	fs.SetOutput(io.Discard)
	if err := fs.Parse(flagx.FilterArgs(args, own)); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return nil
}

func (c *CLI) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (c *CLI) companyCreate(ctx context.Context, args []string) error {
	var a companyCreateArgs
	fs := flag.NewFlagSet("company-create", flag.ContinueOnError)
	fs.StringVar(&a.Name, "name", "", "company name")
	fs.StringVar(&a.Domain, "domain", "", "company domain")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := c.check(&a); err != nil {
		return err
	}

	company, err := c.companies.CreateCompany(ctx, a.Name, a.Domain)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "company created: id=%s domain=%s\n", company.ID, company.Domain)
	return nil
}

func (c *CLI) companySetActive(ctx context.Context, args []string, active bool) error {
	var a companyIDArgs
	name := "company-deactivate"
	if active {
		name = "company-activate"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&a.ID, "id", "", "company id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := c.check(&a); err != nil {
		return err
	}

	if err := c.companies.SetCompanyActive(ctx, a.ID, active); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "company %s: active=%t\n", a.ID, active)
	return nil
}

func (c *CLI) userCreate(ctx context.Context, args []string) error {
	var a userCreateArgs
	fs := flag.NewFlagSet("user-create", flag.ContinueOnError)
	fs.StringVar(&a.Email, "email", "", "user email")
	fs.StringVar(&a.FirstName, "first", "", "first name")
	fs.StringVar(&a.LastName, "last", "", "last name")
	fs.StringVar(&a.CompanyID, "company", "", "company id")
	fs.StringVar(&a.Role, "role", "", "RECRUITER, HIRING_MANAGER or ADMIN")
	fs.StringVar(&a.Password, "password", "", "password (prompted when omitted)")
	if err := parse(fs, args); err != nil {
		return err
	}

	if a.Password == "" {
		pw, err := GetPassword(c.out, "Enter password: ")
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		a.Password = pw
	}
	if err := c.check(&a); err != nil {
		return err
	}

	res, err := c.users.Register(ctx, services.RegisterInput{
		Email:     a.Email,
		Password:  a.Password,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CompanyID: a.CompanyID,
		Role:      a.Role,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "user created: id=%s email=%s role=%s\n", res.User.ID, res.User.Email, res.User.Role)
	return nil
}

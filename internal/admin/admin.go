// Package admin implements the operator commands of the writerlab-admin
// tool.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/netx"
	"github.com/dmitrijs2005/writerlab/internal/server/config"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/writerlab/internal/server/services"
)

var ErrUsage = errors.New("usage: admin <create-user|migrate|upload-preview> [flags]")

type UserCreator interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
}

type PreviewCreator interface {
	CreatePreviewUpload(ctx context.Context, authorID, bookID string) (*models.PreviewUpload, error)
}

type store struct {
	users UserCreator
	books PreviewCreator
	close func() error
}

// openStore connects to the database and applies pending migrations.
// Replaced in tests.
var openStore = func(ctx context.Context, cfg *config.Config, log logging.Logger) (*store, error) {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	var presigner services.Presigner
	if cfg.S3Bucket != "" {
		p, err := services.NewS3Presigner(ctx, services.S3Settings{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Expiry:       cfg.S3PresignExpiry,
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		presigner = p
	}

	return &store{
		users: services.NewUserService(db, m, passwords.NewBcrypt(), log),
		books: services.NewBookService(db, m, presigner, log),
		close: db.Close,
	}, nil
}

// uploadClient performs preview uploads. Replaced in tests.
var uploadClient = &http.Client{Timeout: time.Minute}

// Run executes the command named by args[0].
func Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "create-user":
		return createUser(ctx, args[1:], out)
	case "migrate":
		return migrate(ctx, args[1:], out)
	case "upload-preview":
		return uploadPreview(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

// commonFlags registers the flags shared with the server configuration so
// that the command's own flag set accepts them.
func commonFlags(fs *flag.FlagSet) {
	fs.String("c", "", "config file")
	fs.String("config", "", "config file")
	fs.String("d", "", "database DSN")
}

func loadConfig(args []string) (*config.Config, logging.Logger, error) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewJSON(io.Discard, cfg.LogLevel), nil
}

func createUser(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(out)
	commonFlags(fs)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("-email is required: %w", ErrUsage)
	}

	cfg, log, err := loadConfig(args)
	if err != nil {
		return err
	}

	password, err := promptPassword(out)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	user, err := st.users.CreateUser(ctx, *email, password, *name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created user %s (%s)\n", user.ID, user.Email)
	return nil
}

func migrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := loadConfig(args)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	fmt.Fprintln(out, "migrations applied")
	return nil
}

// uploadPreview stores a local image as a book's preview through the same
// presigned URL flow the web client uses.
func uploadPreview(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("upload-preview", flag.ContinueOnError)
	fs.SetOutput(out)
	commonFlags(fs)
	author := fs.String("author", "", "author user id")
	book := fs.String("book", "", "book id")
	file := fs.String("file", "", "image file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *author == "" || *book == "" || *file == "" {
		return fmt.Errorf("-author, -book and -file are required: %w", ErrUsage)
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, log, err := loadConfig(args)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	up, err := st.books.CreatePreviewUpload(ctx, *author, *book)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(*file))
	if err := netx.PutPresigned(ctx, uploadClient, up.URL, contentType, f); err != nil {
		return err
	}

	fmt.Fprintf(out, "preview stored as %s\n", up.Key)
	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/api"
	"github.com/tendant/ngo-content/pkg/ngocontent/config"
	"github.com/tendant/ngo-content/pkg/ngocontent/objectkey"
)

const usage = `NGO Content Admin CLI

Maintenance commands that talk to the configured database and image storage
directly, without the HTTP server.

USAGE:
  admin <command> [options]

COMMANDS:
  migrate              Create the tables if they do not exist
  count                Count categories, testimonials and members
  members              List every member
  token <role>         Print a bearer token for the given role
  blob-check <file>    Upload a file to the image storage and delete it again

ENVIRONMENT VARIABLES:
  Same as the server, see "server -env-help".
  Configuration can be loaded from a .env file in the current directory.

OPTIONS:
  --json               Output as JSON (count, members)
  --keep               Do not delete the uploaded file (blob-check)
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	args, flags := parseFlags(os.Args[2:])

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	switch command {
	case "migrate":
		handleMigrate(ctx, cfg)
	case "count":
		handleCount(ctx, cfg, flags["json"])
	case "members":
		handleMembers(ctx, cfg, flags["json"])
	case "token":
		if len(args) != 1 {
			log.Fatal("token requires a role")
		}
		handleToken(cfg, args[0])
	case "blob-check":
		if len(args) != 1 {
			log.Fatal("blob-check requires a file")
		}
		handleBlobCheck(ctx, cfg, args[0], flags["keep"])
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

// parseFlags splits --name switches from positional arguments
func parseFlags(argv []string) ([]string, map[string]bool) {
	flags := map[string]bool{}
	var args []string
	for _, arg := range argv {
		if len(arg) > 2 && arg[:2] == "--" {
			flags[arg[2:]] = true
			continue
		}
		args = append(args, arg)
	}
	return args, flags
}

func handleMigrate(ctx context.Context, cfg *config.ServerConfig) {
	cfg.AutoMigrate = true
	store, err := cfg.BuildStore(ctx)
	if err != nil {
		log.Fatalf("Failed to migrate %s database: %v", cfg.DatabaseType, err)
	}
	defer store.Close()
	fmt.Printf("Database %s is up to date\n", cfg.DatabaseType)
}

type counts struct {
	Categories   int `json:"categories"`
	Testimonials int `json:"testimonials"`
	Members      int `json:"members"`
}

func handleCount(ctx context.Context, cfg *config.ServerConfig, useJSON bool) {
	services := buildServices(ctx, cfg)
	defer services.Close()

	var c counts
	c.Categories = totalOf(services.Categories.GetPage(ctx, 1, 1))
	c.Testimonials = totalOf(services.Testimonials.GetPage(ctx, 1, 1))
	c.Members = totalOf(services.Members.GetPage(ctx, 1, 1))

	if useJSON {
		printJSON(c)
		return
	}

	fmt.Printf("Categories:   %d\n", c.Categories)
	fmt.Printf("Testimonials: %d\n", c.Testimonials)
	fmt.Printf("Members:      %d\n", c.Members)
}

func totalOf[T any](res ngocontent.Result[*ngocontent.Page[T]]) int {
	if res.HasErrors() {
		log.Fatalf("Failed to count: %v", res.Messages)
	}
	return res.Value.TotalItems
}

func handleMembers(ctx context.Context, cfg *config.ServerConfig, useJSON bool) {
	services := buildServices(ctx, cfg)
	defer services.Close()

	res := services.Members.List(ctx)
	if res.HasErrors() {
		log.Fatalf("Failed to list members: %v", res.Messages)
	}

	if useJSON {
		printJSON(res.Value)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tIMAGE\tUPDATED\n")
	for _, m := range res.Value {
		image := m.Image
		if image == "" {
			image = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, truncate(m.Name, 30), truncate(image, 60), m.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d\n", len(res.Value))
}

func handleToken(cfg *config.ServerConfig, role string) {
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required to issue tokens")
	}
	token, err := api.IssueToken(api.NewAuth(cfg.JWTSecret), "admin-cli", role, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func handleBlobCheck(ctx context.Context, cfg *config.ServerConfig, path string, keep bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	blobs, err := cfg.BuildBlobStore(ctx)
	if err != nil {
		log.Fatalf("Failed to build %s storage: %v", cfg.Storage.Type, err)
	}

	name := objectkey.NewFlatGenerator().GenerateKey(filepath.Base(path))
	locator, err := blobs.Save(ctx, name, bytes.NewReader(data), http.DetectContentType(data))
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	fmt.Printf("Uploaded %d bytes to %s\n", len(data), locator)

	if err := ngocontent.RequireHTTPS(locator); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	if keep {
		return
	}
	deleted, err := blobs.Delete(ctx, locator)
	if err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	fmt.Printf("Deleted: %t\n", deleted)
}

func buildServices(ctx context.Context, cfg *config.ServerConfig) *ngocontent.Services {
	services, err := cfg.BuildServices(ctx)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	return services
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

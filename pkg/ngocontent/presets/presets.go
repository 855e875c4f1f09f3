// Package presets builds ready-to-use services for common setups.
package presets

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/config"
	memoryrepo "github.com/tendant/ngo-content/pkg/ngocontent/repo/memory"
	memorystorage "github.com/tendant/ngo-content/pkg/ngocontent/storage/memory"
)

// NewDevelopment creates services for local development: an in-memory
// database and images on disk under ./dev-data, served over plain http.
//
// The returned cleanup closes the services and removes the image directory.
func NewDevelopment(opts ...DevelopmentOption) (*ngocontent.Services, *config.ServerConfig, func(), error) {
	dev := &devConfig{
		storageDir: "./dev-data",
		port:       "8080",
	}
	for _, opt := range opts {
		opt(dev)
	}

	cfg, err := config.Load(
		config.WithPort(dev.port),
		config.WithEnvironment("development"),
		config.WithFilesystemStorage(dev.storageDir, ""),
		config.WithInsecureLocators(true),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	services, err := cfg.BuildServices(context.Background())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create services: %w", err)
	}

	cleanup := func() {
		_ = services.Close()
		_ = os.RemoveAll(dev.storageDir)
	}
	return services, cfg, cleanup, nil
}

// Testing bundles services backed by memory with direct access to the
// image store for assertions.
type Testing struct {
	*ngocontent.Services
	Blobs *memorystorage.Backend
}

// NewTesting creates isolated in-memory services closed when t completes.
func NewTesting(t testing.TB, opts ...TestingOption) *Testing {
	t.Helper()
	tc := &testConfig{}
	for _, opt := range opts {
		opt(tc)
	}

	blobs, err := memorystorage.New(memorystorage.DefaultBaseURL)
	if err != nil {
		t.Fatalf("failed to create test blob store: %v", err)
	}

	services, err := ngocontent.New(append([]ngocontent.Option{
		ngocontent.WithStore(memoryrepo.New()),
		ngocontent.WithBlobStore(blobs),
	}, tc.options...)...)
	if err != nil {
		t.Fatalf("failed to create test services: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	if tc.fixtures {
		seed(t, services)
	}
	return &Testing{Services: services, Blobs: blobs}
}

// Fixture names seeded by WithTestFixtures.
var (
	FixtureCategories = []string{"Art", "Books", "Music"}
	FixtureMembers    = []string{"Alice", "Bruno"}
)

func seed(t testing.TB, services *ngocontent.Services) {
	ctx := context.Background()
	for _, name := range FixtureCategories {
		if res := services.Categories.Create(ctx, ngocontent.CreateCategoryRequest{Name: name}); res.HasErrors() {
			t.Fatalf("failed to seed category %s: %v", name, res.Messages)
		}
	}
	for _, name := range FixtureMembers {
		if res := services.Members.Create(ctx, ngocontent.CreateMemberRequest{Name: name}); res.HasErrors() {
			t.Fatalf("failed to seed member %s: %v", name, res.Messages)
		}
	}
	res := services.Testimonials.Create(ctx, ngocontent.CreateTestimonialRequest{Name: "Ana", Content: "Thank you for the reading club."})
	if res.HasErrors() {
		t.Fatalf("failed to seed testimonial: %v", res.Messages)
	}
}

// NewProduction creates services from the environment and refuses
// in-process backends.
func NewProduction(opts ...config.Option) (*ngocontent.Services, *config.ServerConfig, error) {
	cfg, err := config.Load(append([]config.Option{config.WithEnv(), config.WithEnvironment("production")}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseType == "memory" {
		return nil, nil, fmt.Errorf("production preset requires a persistent database (memory not allowed in production)")
	}
	if cfg.Storage.Type == "memory" {
		return nil, nil, fmt.Errorf("production preset requires persistent storage (s3 or fs, not memory)")
	}

	services, err := cfg.BuildServices(context.Background())
	if err != nil {
		return nil, nil, err
	}
	return services, cfg, nil
}

type devConfig struct {
	storageDir string
	port       string
}

type testConfig struct {
	fixtures bool
	options  []ngocontent.Option
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development image directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevPort sets the development server port, used in image urls
func WithDevPort(port string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.port = port
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestFixtures seeds a few categories, members and a testimonial
func WithTestFixtures() TestingOption {
	return func(cfg *testConfig) {
		cfg.fixtures = true
	}
}

// WithServiceOptions passes options through to ngocontent.New
func WithServiceOptions(opts ...ngocontent.Option) TestingOption {
	return func(cfg *testConfig) {
		cfg.options = append(cfg.options, opts...)
	}
}

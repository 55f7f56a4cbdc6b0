//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary        = "bin/timeoff"
	mainPkg       = "./cmd/timeoff"
	migrationsDir = "./internal/adapters/sqlite/migrations"
)

// Dbup runs dbmate to apply journal migrations. The server also applies them
// on open; this target is for inspecting or pre-creating DB_PATH by hand.
func Dbup() error {
	if _, err := exec.LookPath("dbmate"); err != nil {
		fmt.Println(">> dbmate not found; install with:")
		fmt.Println("   go install github.com/amacneil/dbmate/v2@latest")
		return err
	}
	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		return fmt.Errorf("DB_PATH is not set")
	}
	fmt.Println(">> dbmate up", dsn)
	return sh.Run("dbmate", "--url", "sqlite:"+dsn, "--migrations-dir", migrationsDir, "--no-dump-schema", "up")
}

// Build tidies deps, then compiles to ./bin/timeoff.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building timeoff binary...")
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return sh.Run("go", "build", "-ldflags", "-X main.appVersion="+version, "-o", binary, mainPkg)
}

// Run builds then serves the web form.
func Run() error {
	mg.Deps(Build)
	fmt.Println(">> Starting server...")
	return sh.RunV("./"+binary, "serve")
}

// Submit builds then starts the terminal form.
func Submit() error {
	mg.Deps(Build)
	cmd := exec.Command("./"+binary, "submit")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Dev serves the web form via go run.
func Dev() error {
	fmt.Println(">> Dev mode: go run", mainPkg, "serve ...")
	cmd := exec.Command("go", "run", mainPkg, "serve")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "LOG_LEVEL=debug")
	return cmd.Run()
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts and the local journal.
func Clean() error {
	fmt.Println(">> Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	if dsn := os.Getenv("DB_PATH"); dsn != "" {
		os.Remove(dsn)
	}
	return nil
}

// Install installs the binary to $GOPATH/bin.
func Install() error {
	return sh.Run("go", "install", mainPkg)
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}

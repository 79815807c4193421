package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/auth"
	"github.com/linkforge/shortlink/internal/config"
	"github.com/linkforge/shortlink/internal/logger"
	"github.com/linkforge/shortlink/internal/logsink"
	"github.com/linkforge/shortlink/internal/repository/sqlite"
	"github.com/linkforge/shortlink/internal/service"
	"github.com/linkforge/shortlink/internal/shortener"
	"github.com/linkforge/shortlink/internal/transport/client"
	httpTransport "github.com/linkforge/shortlink/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "shortlink",
	Short: "A multi-tenant URL shortening service",
	Long:  "A URL shortening service with per-user link ownership, click analytics, and a SQLite backend",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the short link server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var registerCmd = &cobra.Command{
	Use:   "register [EMAIL] [NAME] [PASSWORD]",
	Short: "Create an account",
	Args:  cobra.ExactArgs(3),
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login [EMAIL] [PASSWORD]",
	Short: "Log in and print a bearer token",
	Args:  cobra.ExactArgs(2),
	RunE:  runLogin,
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateLink,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your short links",
	RunE:  runListLinks,
}

var statsCmd = &cobra.Command{
	Use:   "stats [SHORT_KEY]",
	Short: "Show the analytics for a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkStats,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [SHORT_KEY]",
	Short: "Delete a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteLink,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the aggregate dashboard",
	RunE:  runDashboard,
}

func init() {
	// Flag defaults come from the environment, with a .env file honored
	port, baseURL, dbPath, jwtSecret, logLevel, redirectRate := config.EnvDefaults()

	serverCmd.Flags().StringP("port", "p", port, "Server port")
	serverCmd.Flags().String("base-url", baseURL, "Public base URL used to build short URLs")
	serverCmd.Flags().String("db-path", dbPath, "Database file path")
	serverCmd.Flags().String("jwt-secret", jwtSecret, "HMAC secret for signing bearer tokens")
	serverCmd.Flags().Duration("token-ttl", 7*24*time.Hour, "Bearer token lifetime")
	serverCmd.Flags().String("redirect-rate", redirectRate, "Per-IP rate limit for the redirect path, e.g. 120-M")
	serverCmd.Flags().Int("key-length", shortener.DefaultKeyLength, "Length of generated short keys")
	serverCmd.Flags().String("log-level", logLevel, "Log level (debug, info, warn, error)")
	serverCmd.Flags().Bool("pretty", false, "Human-readable log output")

	clientCmd.PersistentFlags().StringP("server-url", "u", baseURL, "Server URL")
	clientCmd.PersistentFlags().StringP("token", "t", "", "Bearer token from a previous login")

	createCmd.Flags().String("alias", "", "Custom alias instead of a generated key")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("limit", 10, "Links per page")

	clientCmd.AddCommand(registerCmd, loginCmd, createCmd, listCmd, statsCmd, deleteCmd, dashboardCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	baseURL, _ := cmd.Flags().GetString("base-url")
	dbPath, _ := cmd.Flags().GetString("db-path")
	jwtSecret, _ := cmd.Flags().GetString("jwt-secret")
	tokenTTL, _ := cmd.Flags().GetDuration("token-ttl")
	redirectRate, _ := cmd.Flags().GetString("redirect-rate")
	keyLength, _ := cmd.Flags().GetInt("key-length")
	logLevel, _ := cmd.Flags().GetString("log-level")
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg, err := config.New(port, baseURL, dbPath, jwtSecret, tokenTTL, logLevel, pretty, redirectRate,
		shortener.Config{KeyLength: keyLength})
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			zapLogger.Error("failed to close repository", zap.Error(err))
		}
	}()

	generator, err := shortener.NewRandomGenerator(cfg.Shortener)
	if err != nil {
		return fmt.Errorf("failed to create key generator: %w", err)
	}
	zapLogger.Info("using key generator", zap.String("type", generator.Type()))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	registry := service.NewRegistry(repo, generator)
	accounts := service.NewAccounts(repo, tokens)

	sink := logsink.New(repo, zapLogger)
	defer sink.Close()

	server, err := httpTransport.NewServer(*cfg, registry, accounts, sink, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		zapLogger.Info("received signal, shutting down", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("error during server shutdown", zap.Error(err))
		}
	}

	zapLogger.Info("server stopped")
	return nil
}

func clientCommands(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	token, _ := cmd.Flags().GetString("token")
	return client.NewCommands(client.NewClient(serverURL, token))
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Register(ctx, args[0], args[1], args[2])
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Login(ctx, args[0], args[1])
}

func runCreateLink(cmd *cobra.Command, args []string) error {
	alias, _ := cmd.Flags().GetString("alias")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Create(ctx, args[0], alias)
}

func runListLinks(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).List(ctx, page, limit)
}

func runLinkStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Stats(ctx, args[0])
}

func runDeleteLink(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Delete(ctx, args[0])
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Dashboard(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// Command ipban manages the IP ban list the server's rate limiter enforces.
//
//	ipban -ban 203.0.113.7
//	ipban -unban 203.0.113.7
//	ipban -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/Baaaki/message-board/internal/cache"
	"github.com/Baaaki/message-board/internal/config"
	"github.com/Baaaki/message-board/internal/middleware"
	"github.com/Baaaki/message-board/pkg/logger"
	"go.uber.org/zap"
)

// BanList is the part of the rate limiter this command drives.
type BanList interface {
	BanIP(ctx context.Context, ip string) error
	UnbanIP(ctx context.Context, ip string) error
	BannedIPs(ctx context.Context) ([]string, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.RedisURL == "" {
		logger.Log.Fatal("REDIS_URL is required to manage the ban list")
	}

	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer client.Close()

	limiter := middleware.NewRateLimiter(client, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	if err := run(context.Background(), limiter, os.Args[1:], os.Stdout); err != nil {
		logger.Log.Fatal("ipban failed", zap.Error(err))
	}
}

func run(ctx context.Context, bans BanList, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ipban", flag.ContinueOnError)
	fs.SetOutput(out)
	ban := fs.String("ban", "", "IP address to ban")
	unban := fs.String("unban", "", "IP address to lift the ban from")
	list := fs.Bool("list", false, "print banned IP addresses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *ban != "":
		if net.ParseIP(*ban) == nil {
			return fmt.Errorf("invalid IP address %q", *ban)
		}
		if err := bans.BanIP(ctx, *ban); err != nil {
			return fmt.Errorf("failed to ban %s: %w", *ban, err)
		}
		logger.Log.Info("IP banned", zap.String("ip", *ban))
		return nil
	case *unban != "":
		if net.ParseIP(*unban) == nil {
			return fmt.Errorf("invalid IP address %q", *unban)
		}
		if err := bans.UnbanIP(ctx, *unban); err != nil {
			return fmt.Errorf("failed to unban %s: %w", *unban, err)
		}
		logger.Log.Info("IP unbanned", zap.String("ip", *unban))
		return nil
	case *list:
		ips, err := bans.BannedIPs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list banned IPs: %w", err)
		}
		for _, ip := range ips {
			fmt.Fprintln(out, ip)
		}
		return nil
	default:
		return errors.New("one of -ban, -unban or -list is required")
	}
}

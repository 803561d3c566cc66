package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/database"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/redis"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and connections",
	Long: `Loads configuration, pings PostgreSQL and Redis when enabled, and
lists which collaborators are configured.

Example:
  go run ./cmd/scalp doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ Config loaded (ENV: %s)\n", cfg.Env)

	_, snapshot, err := loadStrategy(cfg)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ Strategy %s v%s (%s)\n", snapshot.StrategyID, snapshot.Version, snapshot.ConfigHash[:12])

	printSources(out, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var failed bool
	if err := checkDatabase(ctx, out, cfg); err != nil {
		failed = true
	}
	if err := checkRedis(ctx, out, cfg); err != nil {
		failed = true
	}

	if failed {
		return errors.New("some checks failed")
	}
	fmt.Fprintln(out, "\n✅ All checks passed!")
	return nil
}

// printSources lists configured collaborators without printing keys
func printSources(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "\n📋 Collaborators:")
	rows := [][2]string{
		{"Finnhub", onOff(cfg.Finnhub.APIKey != "")},
		{"AlphaVantage", onOff(cfg.AlphaVantage.APIKey != "")},
		{"Polygon", onOff(cfg.Polygon.APIKey != "")},
		{"Anthropic", onOff(cfg.Anthropic.Enabled())},
		{"Telegram", onOff(cfg.Telegram.Enabled())},
		{"Watchlist", fmt.Sprintf("%v", cfg.Calendar.Watchlist)},
		{"Schedule", fmt.Sprintf("%s (%s)", cfg.Scan.Schedule, cfg.Location())},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "   %-13s: %s\n", r[0], r[1])
	}
}

func checkDatabase(ctx context.Context, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "\nPostgreSQL:")
	db, err := database.New(cfg)
	if errors.Is(err, database.ErrDisabled) {
		fmt.Fprintln(out, "   ⏭️  disabled (DATABASE_URL not set)")
		return nil
	}
	if err != nil {
		fmt.Fprintf(out, "   ❌ %v\n", err)
		return err
	}
	defer db.Close()
	fmt.Fprintf(out, "   URL: %s\n", maskPassword(cfg.Database.URL))

	status, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Fprintf(out, "   ❌ health check failed: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "   ✅ healthy (%v, %d/%d conns)\n",
		status.ResponseTime.Round(time.Microsecond), status.Stats.TotalConns, status.Stats.MaxConns)
	return nil
}

func checkRedis(ctx context.Context, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "\nRedis:")
	if !cfg.Redis.Enabled {
		fmt.Fprintln(out, "   ⏭️  disabled (REDIS_ENABLED=false)")
		return nil
	}
	rdb, err := redis.New(cfg)
	if err != nil {
		fmt.Fprintf(out, "   ❌ %v\n", err)
		return err
	}
	defer rdb.Close()

	if err := redis.NewCache(rdb, "scalp").Set(ctx, "doctor", time.Now().Unix(), time.Minute); err != nil {
		fmt.Fprintf(out, "   ❌ write failed: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "   ✅ %s:%s\n", cfg.Redis.Host, cfg.Redis.Port)
	return nil
}

// maskPassword hides the password in a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func onOff(b bool) string {
	if b {
		return "✅ configured"
	}
	return "⏭️  not set"
}

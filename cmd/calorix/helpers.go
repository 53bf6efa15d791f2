package calorix

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/ai"
	"github.com/GokhanOfficial/CaloriX/internal/app"
	"github.com/GokhanOfficial/CaloriX/internal/db"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/optimistic"
	"github.com/GokhanOfficial/CaloriX/internal/profile"
	"github.com/GokhanOfficial/CaloriX/internal/store"
	"github.com/spf13/cobra"
)

// session is an open database with the active user resolved.
type session struct {
	ctx    context.Context
	store  *store.Store
	userID string
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

func withSession(cmd *cobra.Command, run func(*session) error) error {
	return withDB(func(sqldb *sql.DB) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		st := store.New(sqldb)
		id, err := resolveUser(ctx, st)
		if err != nil {
			return err
		}
		return run(&session{ctx: ctx, store: st, userID: id})
	})
}

// resolveUser prefers --user, then CALORIX_USER_ID, then the stored local user.
func resolveUser(ctx context.Context, st *store.Store) (string, error) {
	id := strings.TrimSpace(userFlag)
	if id == "" {
		id = cfg.UserID
	}
	if id == "" {
		return st.EnsureUser(ctx)
	}
	if err := st.EnsureProfile(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func resolveDBPath() (string, error) {
	return app.DBPath(dbPath, os.Getenv("CALORIX_DB"))
}

func (s *session) dailyLog(date string) (*optimistic.DailyLog, error) {
	log := optimistic.NewDailyLog(s.store, s.userID, date, optimistic.WithLogger(logger))
	if err := log.Load(s.ctx); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *session) profiles() *profile.Service {
	return profile.NewService(s.store, s.userID, ai.TargetCalculator{Remote: macroService(), Log: logger}, profile.WithLogger(logger))
}

func aiClient() *ai.Client {
	return &ai.Client{BaseURL: cfg.FunctionsURL, Token: cfg.FunctionsToken}
}

// macroService is nil without a functions endpoint, so targets are
// computed locally.
func macroService() ai.MacroService {
	if cfg.FunctionsURL == "" {
		return nil
	}
	return aiClient()
}

func parseDateOrToday(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return model.FormatDate(time.Now()), nil
	}
	t, err := model.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return model.FormatDate(t), nil
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseIntArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

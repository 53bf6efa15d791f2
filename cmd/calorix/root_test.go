package calorix

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag so one Execute does not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CALORIX_DB", "CALORIX_USER_ID", "CALORIX_FUNCTIONS_URL", "CALORIX_VERBOSE", "LOG_LEVEL", "PORT"} {
		t.Setenv(key, "")
	}
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	for i, f := range fields {
		if f == "meal" && i+1 < len(fields) {
			return strings.TrimSuffix(fields[i+1], ":")
		}
	}
	t.Fatalf("no id in %q", out)
	return ""
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "calorix") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "calorix.db")
	var users []string
	for i := 0; i < 2; i++ {
		out := mustExecute(t, "--db", path, "init")
		idx := strings.Index(out, "User: ")
		if idx < 0 {
			t.Fatalf("expected user line, got %q", out)
		}
		users = append(users, strings.TrimSpace(out[idx+len("User: "):]))
	}
	if users[0] == "" || users[0] != users[1] {
		t.Fatalf("expected the same local user on both runs, got %v", users)
	}
}

func TestDayFlow(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "calorix.db")
	const day = "2026-10-18"

	out := mustExecute(t, "--db", db, "profile", "onboard", "--name", "Ayşe", "--birth-date", "1996-05-01",
		"--gender", "male", "--height", "180", "--weight", "80", "--target-weight", "75", "--activity", "moderate", "--goal", "lose")
	if !strings.Contains(out, "Onboarding complete") || !strings.Contains(out, "Targets (local)") {
		t.Fatalf("unexpected onboarding output %q", out)
	}

	out = mustExecute(t, "--db", db, "meal", "add", "--name", "Yulaf", "--amount", "50", "--kcal", "380",
		"--protein", "13", "--carbs", "60", "--fat", "7", "--slot", "breakfast", "--date", day)
	if !strings.Contains(out, "Yulaf 50g 190 kcal") {
		t.Fatalf("unexpected meal add output %q", out)
	}
	mealID := addedID(t, out)

	mustExecute(t, "--db", db, "water", "add", "500", "--date", day)
	mustExecute(t, "--db", db, "weight", "add", "79", "--date", day)

	out = mustExecute(t, "--db", db, "today", "--date", day)
	for _, want := range []string{"breakfast: 190 kcal", "Intake: 190 kcal", "Water: 500 / 2640 ml", "Weight: 79.0 kg", "BMI: 24.4 (normal)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in today output:\n%s", want, out)
		}
	}

	mustExecute(t, "--db", db, "meal", "update", mealID, "--amount", "100", "--date", day)
	out = mustExecute(t, "--db", db, "meal", "list", "--date", day)
	if !strings.Contains(out, "Yulaf\t100\t380\t13.0\t60.0\t7.0\tmanual") {
		t.Fatalf("expected rescaled meal, got:\n%s", out)
	}

	out = mustExecute(t, "--db", db, "food", "search", "yul")
	if !strings.Contains(out, "Yulaf") {
		t.Fatalf("expected history match, got:\n%s", out)
	}

	backup := filepath.Join(dir, "backup.json")
	mustExecute(t, "--db", db, "export", "--out", backup)
	if info, err := os.Stat(backup); err != nil || info.Size() == 0 {
		t.Fatalf("expected backup file, got %v %v", info, err)
	}
	out = mustExecute(t, "--db", db, "--user", "other", "import", "--in", backup)
	if !strings.Contains(out, "meals=1 water=1 weight=1 skipped=0 failed=0") {
		t.Fatalf("unexpected import output %q", out)
	}

	mustExecute(t, "--db", db, "meal", "update", mealID, "--amount", "150", "--kcal", "360", "--protein", "12", "--date", day)
	out = mustExecute(t, "--db", db, "meal", "list", "--date", day)
	if !strings.Contains(out, "Yulaf\t150\t540\t18.0\t90.0\t10.5\tmanual") {
		t.Fatalf("expected totals recomputed from edited per 100 g values, got:\n%s", out)
	}
	if _, err := execute(t, "--db", db, "meal", "update", mealID, "--fat=-1", "--date", day); err == nil || !strings.Contains(err.Error(), "--fat must be >= 0") {
		t.Fatalf("expected negative fat to be rejected, got %v", err)
	}

	mustExecute(t, "--db", db, "meal", "remove", mealID, "--date", day)
	out = mustExecute(t, "--db", db, "today", "--date", day)
	if !strings.Contains(out, "Intake: 0 kcal") {
		t.Fatalf("expected empty intake after removal:\n%s", out)
	}

	out = mustExecute(t, "--db", db, "--user", "other", "today", "--date", day)
	if !strings.Contains(out, "Intake: 380 kcal") {
		t.Fatalf("expected imported meal for other user:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "calorix.db")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"meal without source", []string{"meal", "add", "--amount", "100"}, "--barcode, --food or --name"},
		{"bad slot", []string{"meal", "add", "--name", "x", "--slot", "brunch"}, "invalid meal type"},
		{"bad date", []string{"water", "add", "250", "--date", "18.10.2026"}, "invalid --date"},
		{"bad water", []string{"water", "add", "lots"}, "invalid amount"},
		{"recognize without service", []string{"recognize", "--text", "bir elma"}, "not configured"},
		{"profile without fields", []string{"profile", "set"}, "nothing to update"},
		{"bad calorie target", []string{"profile", "set", "--calories", "900"}, "daily_calorie_target"},
		{"bad notification type", []string{"notifications", "set", "sms"}, "invalid notification type"},
		{"bad period", []string{"analytics", "year"}, "invalid period"},
	}
	for _, tc := range cases {
		out, err := execute(t, append([]string{"--db", db}, tc.args...)...)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v\n%s", tc.name, tc.want, err, out)
		}
	}
}

func TestNotificationPreferences(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "calorix.db")

	mustExecute(t, "--db", db, "notifications", "set", "water", "--interval", "2", "--push=false")
	out := mustExecute(t, "--db", db, "notifications", "prefs")
	if !strings.Contains(out, "water\tfalse\tfalse\t9\t21\t2\t0\t0") {
		t.Fatalf("expected updated water preference:\n%s", out)
	}
	out = mustExecute(t, "--db", db, "notifications", "list")
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected only the header, got:\n%s", out)
	}
}

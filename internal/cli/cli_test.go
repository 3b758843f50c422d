package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/history"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/patch"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// Test infrastructure
// ---------------------------------------------------------------------------

const fixtureSource = `public class PriceScraperService {
    private Double scrape(String platform, Document doc) {
        Double price = null;
        switch (platform) {
            case "Hotstar":
                price = extractHotstarPrice(doc);
                break;
            case "Spotify":
                price = extractSpotifyPrice(doc);
                break;
        }
        return price;
    }
}
`

// captureStdout captures everything written to os.Stdout during f().
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// executeCmd runs the root command with the given args, capturing stdout.
// Returns the captured output and any error from Execute().
func executeCmd(root *cobra.Command, args ...string) (string, error) {
	var execErr error
	output := captureStdout(func() {
		root.SetArgs(args)
		execErr = root.Execute()
	})
	return output, execErr
}

// newFixture writes the scraper source into a temp dir and returns a config targeting it.
func newFixture(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	target := filepath.Join(dir, "PriceScraperService.java")
	if err := os.WriteFile(target, []byte(fixtureSource), 0644); err != nil {
		t.Fatal(err)
	}
	return config.Config{Target: target}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// Tests: default invocation and patch command
// ---------------------------------------------------------------------------

func TestRoot_PatchesDefaultTarget(t *testing.T) {
	cfg := newFixture(t)

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Fixed successfully!") {
		t.Errorf("expected confirmation, got: %q", out)
	}
	for _, name := range []string{patch.RuleRemoveDuplicateSpotify, patch.RuleInjectExtractors} {
		if !strings.Contains(out, name) {
			t.Errorf("expected output to mention rule %s, got: %q", name, out)
		}
	}

	got := readFile(t, cfg.Target)
	if strings.Contains(got, `case "Spotify"`) {
		t.Error("duplicate Spotify case still present")
	}
	if strings.Count(got, "extractDeepSeekPrice(Document doc)") != 1 {
		t.Error("DeepSeek extractor not injected exactly once")
	}
}

func TestRoot_RejectsArguments(t *testing.T) {
	cfg := newFixture(t)

	if _, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "unexpected.java"); err == nil {
		t.Error("expected error for positional argument on root command")
	}
	if got := readFile(t, cfg.Target); got != fixtureSource {
		t.Error("file modified despite argument error")
	}
}

func TestPatchCommand_NothingMatchedStillConfirms(t *testing.T) {
	cfg := newFixture(t)
	plain := filepath.Join(filepath.Dir(cfg.Target), "Plain.java")
	if err := os.WriteFile(plain, []byte("// no class here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "patch", plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Fixed successfully!") {
		t.Errorf("expected confirmation, got: %q", out)
	}
	if strings.Count(out, "no match") != 2 {
		t.Errorf("expected both rules reported as unmatched, got: %q", out)
	}
	if got := readFile(t, plain); got != "// no class here\n" {
		t.Errorf("file changed: %q", got)
	}
}

func TestPatchCommand_DryRun(t *testing.T) {
	cfg := newFixture(t)

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "patch", "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Dry run") {
		t.Errorf("expected dry run notice, got: %q", out)
	}
	if got := readFile(t, cfg.Target); got != fixtureSource {
		t.Error("dry run modified the file")
	}
}

func TestPatchCommand_Strict(t *testing.T) {
	cfg := newFixture(t)
	root := NewRootCmd(cfg, "v1.0.0-test")

	if _, err := executeCmd(root, "patch"); err != nil {
		t.Fatal(err)
	}
	patched := readFile(t, cfg.Target)

	_, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "patch", "--strict")
	if !errors.Is(err, patch.ErrRuleNotMatched) {
		t.Fatalf("err = %v, want ErrRuleNotMatched", err)
	}
	if got := readFile(t, cfg.Target); got != patched {
		t.Error("strict failure modified the file")
	}
}

func TestPatchCommand_MissingFile(t *testing.T) {
	cfg := config.Config{Target: filepath.Join(t.TempDir(), "absent", "PriceScraperService.java")}

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"))
	if err == nil {
		t.Fatal("expected error for missing target")
	}
	if strings.Contains(out, "Fixed successfully!") {
		t.Errorf("confirmation printed on failure: %q", out)
	}
}

func TestPatchCommand_JSON(t *testing.T) {
	cfg := newFixture(t)

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "patch", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report patch.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Path != cfg.Target || !report.Written || len(report.Results) != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestPatchCommand_RulesFile(t *testing.T) {
	cfg := newFixture(t)
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	rules := "rules:\n  - name: rename-hotstar\n    kind: literal\n    pattern: extractHotstarPrice\n    replacement: extractJioHotstarPrice\n"
	if err := os.WriteFile(rulesPath, []byte(rules), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "patch", "--rules", rulesPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "rename-hotstar") {
		t.Errorf("expected rule name in output, got: %q", out)
	}

	got := readFile(t, cfg.Target)
	if !strings.Contains(got, "extractJioHotstarPrice(doc)") {
		t.Error("literal rule not applied")
	}
	if !strings.Contains(got, `case "Spotify"`) {
		t.Error("built-in rules should not run when a rule file is given")
	}
}

// ---------------------------------------------------------------------------
// Tests: history
// ---------------------------------------------------------------------------

func TestHistory_RecordsRunsAndWarnsOnRepeat(t *testing.T) {
	cfg := newFixture(t)
	cfg.HistoryPath = filepath.Join(t.TempDir(), "history.db")

	first, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(first, "already patched") {
		t.Errorf("first run should not warn, got: %q", first)
	}

	second, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second, "already patched") {
		t.Errorf("second run should warn about repeat patch, got: %q", second)
	}

	out, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, out)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Matched() != 1 || runs[1].Matched() != 2 {
		t.Errorf("matched counts = %d, %d; want 1, 2", runs[0].Matched(), runs[1].Matched())
	}

	table, err := executeCmd(NewRootCmd(cfg, "v1.0.0-test"), "history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table, "PriceScraperService.java") || !strings.Contains(table, "written") {
		t.Errorf("history table missing run rows: %q", table)
	}
	if !strings.Contains(table, cfg.HistoryPath) {
		t.Errorf("history table should name the journal %s, got: %q", cfg.HistoryPath, table)
	}
}

func TestHistory_Disabled(t *testing.T) {
	_, err := executeCmd(NewRootCmd(config.Config{}, "v1.0.0-test"), "history")
	if !errors.Is(err, history.ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

// ---------------------------------------------------------------------------
// Tests: rules and version
// ---------------------------------------------------------------------------

func TestRulesCommand(t *testing.T) {
	out, err := executeCmd(NewRootCmd(config.Config{}, "v1.0.0-test"), "rules")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"built-in", patch.RuleRemoveDuplicateSpotify, patch.RuleInjectExtractors, "REGEX", "INSERT"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected rules output to contain %q, got: %q", want, out)
		}
	}
}

func TestRulesCommand_JSON(t *testing.T) {
	out, err := executeCmd(NewRootCmd(config.Config{}, "v1.0.0-test"), "rules", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rules []patch.Rule
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("rules output is not JSON: %v", err)
	}
	if len(rules) != 2 || rules[1].Kind != patch.KindInsertBeforeFinalBrace {
		t.Errorf("unexpected rules: %+v", rules)
	}
}

func TestRulesCommand_InvalidPattern(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  - name: broken\n    kind: regex\n    pattern: '(unclosed'\n    replacement: x\n"
	if err := os.WriteFile(rulesPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := executeCmd(NewRootCmd(config.Config{}, "v1.0.0-test"), "rules", "--rules", rulesPath)
	if err == nil {
		t.Fatal("expected error for an invalid pattern")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the rule: %v", err)
	}
}

func TestTryJSON(t *testing.T) {
	newCmd := func(jsonFlag bool) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().Bool("json", jsonFlag, "")
		return cmd
	}

	var printed bool
	var err error
	out := captureStdout(func() {
		printed, err = tryJSON(newCmd(false), map[string]int{"a": 1})
	})
	if printed || err != nil || out != "" {
		t.Errorf("without --json: printed=%v err=%v out=%q", printed, err, out)
	}

	out = captureStdout(func() {
		printed, err = tryJSON(newCmd(true), map[string]int{"a": 1})
	})
	if !printed || err != nil || !strings.Contains(out, `"a": 1`) {
		t.Errorf("with --json: printed=%v err=%v out=%q", printed, err, out)
	}

	out = captureStdout(func() {
		printed, err = tryJSON(newCmd(true), make(chan int))
	})
	if !printed || err == nil {
		t.Errorf("unencodable value: printed=%v err=%v, want an error", printed, err)
	}
	if out != "" {
		t.Errorf("unencodable value should print nothing, got %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCmd(NewRootCmd(config.Config{}, "v1.0.0-test"), "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("expected version output to contain 'v1.0.0-test', got: %q", out)
	}
}

func TestSummarize(t *testing.T) {
	insert := patch.Rule{Kind: patch.KindInsertBeforeFinalBrace, Replacement: "\nline one\nline two\n"}
	if got := summarize(insert); got != "insert 2 lines before final }" {
		t.Errorf("summarize(insert) = %q", got)
	}

	long := patch.Rule{Kind: patch.KindRegex, Pattern: strings.Repeat("abc ", 20)}
	got := summarize(long)
	if len([]rune(got)) != 48 || !strings.HasSuffix(got, "…") {
		t.Errorf("summarize(long) = %q", got)
	}
}

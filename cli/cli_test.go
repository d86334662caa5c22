package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hotel-rates-scraper/config"
	"hotel-rates-scraper/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh command tree and returns stdout and stderr
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func hotelServer(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"hotel-a": `<h2 class="hp__hotel-name">Hotel A</h2><table class="hprt-table">
			<tr data-block-id="1"><td><span class="hprt-roomtype-icon-link">Deluxe</span>
			<span class="bui-badge">30 m²</span></td><td><span class="prco-valign-middle-helper">S$ 200</span></td></tr></table>`,
		"hotel-b": `<h2 class="hp__hotel-name">Hotel B</h2><table class="hprt-table">
			<tr data-block-id="1"><td><span class="hprt-roomtype-icon-link">Deluxe</span></td>
			<td><span class="prco-valign-middle-helper">S$ 150</span></td></tr>
			<tr data-block-id="2"><td><span class="hprt-roomtype-icon-link">Twin</span></td>
			<td><span class="prco-valign-middle-helper">S$ 120</span></td></tr></table>`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(filepath.Base(r.URL.Path), ".en-gb.html")
		page, ok := pages[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serverConfig(t *testing.T, srv *httptest.Server) string {
	return writeFile(t, "config.yaml", fmt.Sprintf(`
fetch:
  backend: resty
  base_url: %s
  timeout: 5s
  concurrency: 2
`, srv.URL))
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"scrape", "dates"})
}

func TestScrapeCmd_Flags(t *testing.T) {
	scrape, _, err := NewRootCmd().Find([]string{"scrape"})
	require.NoError(t, err)

	tests := []struct {
		flag     string
		defValue string
	}{
		{"concurrency", "10"},
		{"horizon", "365"},
		{"backend", config.BackendColly},
		{"format", "table"},
		{"timeout", "30s"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := scrape.Flags().Lookup(tt.flag)
			require.NotNil(t, f, "%s flag should exist", tt.flag)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}
}

func TestScrapeCmd_EndToEnd(t *testing.T) {
	srv := hotelServer(t)
	hotels := writeFile(t, "hotels.txt", "Hotel-B\n\n")

	stdout, stderr, err := execute(t, "scrape",
		"--config", serverConfig(t, srv),
		"--hotel", "hotel-a",
		"--hotels-file", hotels,
		"--country", "SG",
		"--currency", "sgd",
		"--start", "2024-01-01",
		"--horizon", "31",
		"--seed", "7",
		"--format", "csv",
	)
	require.NoError(t, err, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3, stdout)
	assert.Equal(t, "hotelName,checkIn,checkOut,roomName,priceMinorUnits,roomArea,areaUnit,sourceUrl", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Hotel B,2024-01-"), lines[1])
	assert.Contains(t, lines[1], ",Deluxe,150,,,"+srv.URL+"/hotel/sg/hotel-b.en-gb.html?")
	assert.Contains(t, lines[2], ",Twin,120,,,")
	assert.NotContains(t, stderr, "could not be fetched")
}

func TestScrapeCmd_ReportsFailures(t *testing.T) {
	srv := hotelServer(t)

	stdout, stderr, err := execute(t, "scrape",
		"--config", serverConfig(t, srv),
		"--hotel", "hotel-a",
		"--hotel", "unknown-hotel",
		"--country", "sg",
		"--currency", "SGD",
		"--start", "2024-01-01",
		"--horizon", "60",
		"--format", "markdown",
		"--show-failures",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deluxe")
	assert.Contains(t, stderr, "2 of 4 pages could not be fetched")
	assert.Contains(t, stderr, "unknown-hotel")
}

func TestScrapeCmd_EmptyResult(t *testing.T) {
	srv := hotelServer(t)

	stdout, _, err := execute(t, "scrape",
		"--config", serverConfig(t, srv),
		"--hotel", "unknown-hotel",
		"--country", "sg",
		"--currency", "SGD",
		"--start", "2024-01-01",
		"--horizon", "10",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, pipeline.EmptyHint)
}

func TestScrapeCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no hotels", []string{"--country", "sg", "--currency", "SGD"}, "at least one hotel"},
		{"bad country", []string{"--hotel", "a", "--country", "xx1", "--currency", "SGD"}, "two-letter code"},
		{"bad start", []string{"--hotel", "a", "--country", "sg", "--currency", "SGD", "--start", "01/02/2024"}, "invalid start date"},
		{"bad format", []string{"--hotel", "a", "--country", "sg", "--currency", "SGD", "--format", "xlsx"}, "unknown output format"},
		{"bad backend", []string{"--hotel", "a", "--backend", "curl"}, "unknown fetch backend"},
		{"bad concurrency", []string{"--hotel", "a", "--concurrency", "0"}, "concurrency must be positive"},
		{"missing hotels file", []string{"--hotels-file", "/nonexistent/hotels.txt", "--country", "sg", "--currency", "SGD"}, "failed to read hotels file"},
		{"positional args", []string{"marina-bay-sands"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"scrape", "--config", writeFile(t, "config.yaml", "{}")}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScrapeCmd_FlagsOverrideConfig(t *testing.T) {
	cmd := newScrapeCmd(&globalOptions{})
	require.NoError(t, cmd.ParseFlags([]string{"--country", "gb", "--concurrency", "3"}))

	opts := &scrapeOptions{country: "gb", concurrency: 3, backend: "resty"}
	cfg := config.GetDefaultConfig()
	cfg.Search.Currency = "GBP"
	opts.applyTo(cmd, cfg)

	assert.Equal(t, "gb", cfg.Search.Country)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, "GBP", cfg.Search.Currency, "unset flags must not override")
	assert.Equal(t, config.BackendColly, cfg.Fetch.Backend, "unset flags must not override")
}

func TestDatesCmd(t *testing.T) {
	args := []string{"dates", "--start", "2024-01-01", "--horizon", "365", "--seed", "42"}

	first, _, err := execute(t, args...)
	require.NoError(t, err)
	second, _, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second, "seeded runs must match")
	lines := strings.Split(strings.TrimSpace(first), "\n")
	assert.Len(t, lines, 12)
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 2)
		assert.True(t, strings.HasPrefix(fields[0], "2024-"), line)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "json", true)
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger, err = newLogger(&buf, "text", false)
	require.NoError(t, err)
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	_, err = newLogger(&buf, "xml", false)
	assert.ErrorContains(t, err, "unknown log format")
}

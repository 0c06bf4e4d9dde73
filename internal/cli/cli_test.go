package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

func init() { logx.Disable() }

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testConfig(t *testing.T) AppConfig {
	t.Helper()
	dir := t.TempDir()
	return AppConfig{
		Environment: "testing",
		Session:     model.SessionConfig{Backend: "memory", TTL: "0"},
		Dialogue:    model.DialogueConfig{OTPTTL: "5m", RefPrefix: "CMP-"},
		Classifier:  model.ClassifierConfig{Backend: "keyword"},
		Storage:     model.StorageConfig{Backend: "memory", UploadDir: filepath.Join(dir, "uploads")},
		Registry: model.RegistryConfig{
			Brokers: writeFile(t, dir, "brokers.csv",
				"broker_name,aliases\nZerodha Broking Limited,Zerodha\nHDFC Securities Limited,HDFC Securities\n"),
			Exchanges: writeFile(t, dir, "exchanges.csv", "exchange_name,aliases\nBSE Limited,BSE\n"),
			Companies: writeFile(t, dir, "companies.csv", "company_name\nInfosys Limited\n"),
			// missing files load as empty registries
			MutualFunds: filepath.Join(dir, "absent_mf.csv"),
			Advisers:    filepath.Join(dir, "absent_ia.csv"),
		},
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("COMPLAINT_REF_PREFIX", "GRV-")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "30m", cfg.Session.TTL)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, "GRV-", cfg.Dialogue.RefPrefix)
	assert.Equal(t, "data/brokers.csv", cfg.Registry.Brokers)
}

func TestBuildRejectsUnknownBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = "etcd"
	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session backend")

	cfg = testConfig(t)
	cfg.Storage.Backend = "mongo"
	_, err = Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown complaint backend")

	cfg = testConfig(t)
	cfg.Classifier.Backend = "gemini"
	_, err = Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestBuildLoadsRegistries(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, 2, app.Registry.Get(model.KindBroker).Len())
	assert.Equal(t, 0, app.Registry.Get(model.KindMutualFund).Len())
	_, ok := app.Postgres()
	assert.False(t, ok)
}

func TestRunChatConversation(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	in := strings.NewReader("my broker zerodha has not released my funds for weeks\n/quit\n")
	var out bytes.Buffer
	require.NoError(t, runChat(ctx, app, "cli-1", in, &out))

	assert.Contains(t, out.String(), "💬 conversation cli-1")
	assert.Contains(t, out.String(), "you> ")
	assert.Contains(t, out.String(), "👋 bye")

	st, found, err := app.Sessions.Get(ctx, "cli-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StageConfirming, st.Stage)
	assert.Equal(t, "Zerodha Broking Limited", st.Pending.Broker)
}

func TestChatCommandEndsOnEOF(t *testing.T) {
	root := RootCommand(testConfig(t))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs([]string{"chat", "--cid", "eof"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "💬 conversation eof")
	assert.Contains(t, out.String(), "bot> ")
}

func TestRunSuggest(t *testing.T) {
	reg := registry.NewSet(registry.FileSources(testConfig(t).Registry))
	reg.Load()

	var out bytes.Buffer
	require.NoError(t, runSuggest(reg, "brokers", "zerodha", &out))
	assert.Contains(t, out.String(), "1. Zerodha Broking Limited")

	out.Reset()
	require.NoError(t, runSuggest(reg, "advisers", "anyone", &out))
	assert.Contains(t, out.String(), "no adviser match")

	assert.Error(t, runSuggest(reg, "planets", "x", &out))
}

func TestRunExport(t *testing.T) {
	ctx := context.Background()
	repo := complaints.NewMemoryRepository()
	for _, ref := range []string{"CMP-20250102-AAAAAAAA", "CMP-20250102-BBBBBBBB"} {
		_, err := repo.Save(ctx, &complaints.Complaint{Number: ref, Description: "funds not received", Category: "Stock Broker"})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	n, err := runExport(ctx, repo, &out, complaints.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,complaint_number,"))
	assert.Contains(t, out.String(), "CMP-20250102-BBBBBBBB")
}

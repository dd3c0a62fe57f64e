package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("init", "--as", key("admin"), "--join-fee", "10", "--tax", "3", "--unit-scale", "1")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	data := dataMap(t, resp)
	assert.EqualValues(t, 10, data["join_fee"])
	assert.EqualValues(t, 3, data["tax_percent"])
	assert.NotEmpty(t, data["commune"])

	resp, err = env.runJSON("init", "--as", key("admin"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RecordExists", resp.Error.Code)
}

func TestInit_DefaultsFromConfig(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("init", "--as", key("admin"))
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.EqualValues(t, 10_000_000, data["join_fee"])
	assert.EqualValues(t, 3, data["tax_percent"])
	assert.EqualValues(t, 1_000_000_000, data["unit_scale"])
}

func TestInit_WrongNonce(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("init", "--as", key("admin"), "--nonce", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "InvalidAddress", resp.Error.Code)
}

func TestNonceOutOfRange(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("join", "--as", key("alice"), "--nonce", "256")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "out of range")
}

func TestInvalidIdentity(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("join", "--as", "not-base58!")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFundAndBalance(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("fund", key("alice"), "25")
	require.NoError(t, err)
	assert.EqualValues(t, 25, dataMap(t, resp)["balance"])

	resp, err = env.runJSON("balance", key("alice"))
	require.NoError(t, err)
	assert.EqualValues(t, 25, dataMap(t, resp)["balance"])

	out := env.mustRun("balance", "pool")
	assert.Contains(t, out, "balance:")
	assert.Contains(t, out, "0")
}

func TestJoin(t *testing.T) {
	env := newCLIEnv(t)
	env.genesis()

	_, err := env.runJSON("join", "--as", key("alice"))
	require.Error(t, err, "unfunded join must fail")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	env.mustRun("fund", key("alice"), "10")
	resp, err := env.runJSON("join", "--as", key("alice"))
	require.NoError(t, err)
	assert.Equal(t, true, dataMap(t, resp)["approval"])

	resp, err = env.runJSON("balance", "pool")
	require.NoError(t, err)
	assert.EqualValues(t, 10, dataMap(t, resp)["balance"])

	out := env.mustRun("show", "approver", key("alice"))
	assert.Contains(t, out, "approval:")
	assert.Contains(t, out, "true")
}

func TestItemCreateAndBuy(t *testing.T) {
	env := newCLIEnv(t)
	env.genesis()
	env.member("alice", 3)
	env.member("bob", 103)

	resp, err := env.runJSON("item", "create", "--as", key("alice"),
		"--id", "1", "--title", "Bicycle", "--description", "Red", "--price", "100")
	require.NoError(t, err)
	item := dataMap(t, resp)
	assert.EqualValues(t, 103, item["price"])
	assert.EqualValues(t, 3, item["tax"])
	assert.Equal(t, false, item["sold"])

	resp, err = env.runJSON("item", "buy", "--as", key("bob"), "--id", "1", "--seller", key("mallory"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "WrongSeller", resp.Error.Code)

	resp, err = env.runJSON("item", "buy", "--as", key("bob"), "--id", "1", "--seller", key("alice"))
	require.NoError(t, err)
	item = dataMap(t, resp)
	assert.Equal(t, true, item["sold"])
	assert.Equal(t, key("bob"), item["buyer"])

	resp, err = env.runJSON("balance", key("alice"))
	require.NoError(t, err)
	assert.EqualValues(t, 103, dataMap(t, resp)["balance"])

	out := env.mustRun("show", "item", "1")
	assert.Contains(t, out, "Bicycle")
	assert.Contains(t, out, key("bob"))

	resp, err = env.runJSON("show", "commune")
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.EqualValues(t, 23, data["pool"])
	commune, ok := data["commune"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 0, commune["item_count"])
}

func TestItemCreate_TitleTooLong(t *testing.T) {
	env := newCLIEnv(t)
	env.genesis()
	env.member("alice", 3)

	resp, err := env.runJSON("item", "create", "--as", key("alice"),
		"--id", "1", "--title", strings.Repeat("t", 81), "--price", "100")
	require.Error(t, err)
	assert.Equal(t, "TitleTooLong", resp.Error.Code)
}

func TestProposalLifecycle(t *testing.T) {
	env := newCLIEnv(t)
	env.genesis()
	env.member("owner", 0)
	env.member("voter", 0)

	resp, err := env.runJSON("proposal", "add", "--as", key("owner"),
		"--id", "1", "--title", "Garden", "--description", "Seeds", "--amount", "5", "--duration", "1h")
	require.NoError(t, err)
	assert.EqualValues(t, 5, dataMap(t, resp)["price"])

	resp, err = env.runJSON("proposal", "vote", "--as", key("voter"), "--id", "1", "--vote", "yes")
	require.NoError(t, err)
	assert.EqualValues(t, 1, dataMap(t, resp)["vote_yes"])

	resp, err = env.runJSON("proposal", "vote", "--as", key("voter"), "--id", "1", "--vote", "no")
	require.Error(t, err)
	assert.Equal(t, "VoteAlreadyCast", resp.Error.Code)

	resp, err = env.runJSON("proposal", "approve", "--as", key("owner"), "--id", "1", "--owner", key("owner"))
	require.Error(t, err)
	assert.Equal(t, "VotingStillOpen", resp.Error.Code)

	resp, err = env.runJSON("show", "proposal", "1")
	require.NoError(t, err)
	assert.Equal(t, "open", dataMap(t, resp)["status"])

	out := env.mustRun("show", "vote", "1", key("voter"))
	assert.Contains(t, out, "yes")
}

func TestProposalVote_InvalidChoice(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("proposal", "vote", "--as", key("voter"), "--id", "1", "--vote", "maybe")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid vote "maybe"`)
}

func TestProposalAdd_EndFlags(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("proposal", "add", "--as", key("owner"), "--id", "1", "--amount", "5")
	require.Error(t, err)

	_, err = env.run("proposal", "add", "--as", key("owner"), "--id", "1", "--amount", "5",
		"--end", "1700000000", "--duration", "1h")
	require.Error(t, err)
}

func TestShow_NotFound(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("show", "commune")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "RecordNotFound", resp.Error.Code)
}

func TestKeygen(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("keygen")
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.NotEmpty(t, data["identity"])
	assert.NotEmpty(t, data["private"])

	other, err := env.runJSON("keygen")
	require.NoError(t, err)
	assert.NotEqual(t, data["identity"], dataMap(t, other)["identity"])
}

func TestInit_ConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "commune.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("genesis:\n  join_fee: 7\n  tax_percent: 5\n  unit_scale: 2\n"), 0644))

	resp, err := env.runJSON("--config", cfgPath, "init", "--as", key("admin"), "--tax", "9")
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.EqualValues(t, 7, data["join_fee"])
	assert.EqualValues(t, 9, data["tax_percent"], "flags override the file")
	assert.EqualValues(t, 2, data["unit_scale"])
}

func TestInvalidConfig(t *testing.T) {
	env := newCLIEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "commune.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("genesis:\n  tax_percent: 101\n"), 0644))

	_, err := env.run("--config", cfgPath, "balance", "pool")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

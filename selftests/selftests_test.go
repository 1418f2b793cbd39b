package selftests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/output"
)

func runSelfTests(t *testing.T) (bdd.Results, *output.Recorder) {
	t.Helper()
	out := &output.Recorder{}
	reg := bdd.NewRegistry(bdd.Configuration{Output: out, Assertions: Assertions()})
	require.NoError(t, Register(reg))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	return results, out
}

func TestSelfTestsPass(t *testing.T) {
	results, out := runSelfTests(t)
	for _, f := range results.Failures {
		t.Errorf("%s failed: %v", f.ID, f.Errors)
	}
	assert.True(t, results.OK())
	assert.Empty(t, out.Messages(output.LevelError))

	var suites []string
	for _, s := range results.Suites {
		suites = append(suites, s.Name)
	}
	assert.Equal(t, []string{PlaylistSuite, EngineSuite}, suites)
}

func TestEveryExampleAssertsSomething(t *testing.T) {
	results, out := runSelfTests(t)
	for _, r := range results.Examples {
		if r.ID[2] == "setup once" {
			assert.Equal(t, 0, r.Assertions)
			continue
		}
		assert.Greater(t, r.Assertions, 0, r.ID.String())
	}
	assert.Equal(t, []string{`Running setup method: "setup once" once.`}, out.Messages(output.LevelInfo))
	for _, w := range out.Messages(output.LevelWarn) {
		assert.Equal(t, "Example is asynchronous, waiting for callback.", w)
	}
}

func TestPlaylistFixtureRejectsBadDocuments(t *testing.T) {
	_, err := loadPlaylist([]byte(`[1, 2]`))
	assert.Error(t, err)
	_, err = loadPlaylist([]byte(`{`))
	assert.Error(t, err)
	doc, err := loadPlaylist(playlistDocument)
	require.NoError(t, err)
	assert.Equal(t, "My playlist", doc.GetByKey("playlist").GetByKey("title").StringValue())
}

func TestContainsAssertion(t *testing.T) {
	out := &output.Recorder{}
	assert.True(t, assertContains(out, "abc", "b"))
	assert.False(t, assertContains(out, "abc", "d"))
	assert.False(t, assertContains(out, "abc"))
	assert.Equal(t, []string{
		`String "abc" does not contain "d".`,
		`Assertion "contains" takes 2 argument(s) but was given 1.`,
	}, out.Messages(output.LevelError))
}

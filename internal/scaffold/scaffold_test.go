package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/projectconfig"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("summarizer"))
	assert.NoError(t, ValidateName("my-target-2"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName(".."))
	assert.Error(t, ValidateName("../escape"))
	assert.Error(t, ValidateName("a/b"))
	assert.Error(t, ValidateName(`a\b`))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Support Bot", TitleCase("support-bot"))
	assert.Equal(t, "Summarizer", TitleCase("summarizer"))
	assert.Equal(t, "", TitleCase(""))
}

func TestReadProjectDefaults(t *testing.T) {
	dir := t.TempDir()
	executor, model := ReadProjectDefaults(dir)
	assert.Equal(t, projectconfig.DefaultExecutor, executor)
	assert.Equal(t, projectconfig.DefaultModel, model)

	content := "defaults:\n  executor: openai\n  model: gpt-4o\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.ConfigFile), []byte(content), 0o644))

	executor, model = ReadProjectDefaults(dir)
	assert.Equal(t, "openai", executor)
	assert.Equal(t, "gpt-4o", model)
}

func TestConfigYAMLParses(t *testing.T) {
	var suite models.EvalSuite
	require.NoError(t, yaml.Unmarshal([]byte(ConfigYAML("summarizer", "mock", "gpt-4o-mini")), &suite))

	assert.Equal(t, "summarizer", suite.Name)
	assert.Equal(t, models.ModeQuick, suite.Config.Mode)
	assert.Equal(t, "mock", suite.Config.Executor)
	assert.Equal(t, "gpt-4o-mini", suite.Config.Model)
	require.Len(t, suite.Checks, 3)
	assert.Equal(t, models.CheckKindLength, suite.Checks[2].Kind)
	assert.Len(t, suite.Judge.Criteria, 2)
}

func TestCasesYAMLParses(t *testing.T) {
	var cases []models.TestCase
	require.NoError(t, yaml.Unmarshal([]byte(CasesYAML()), &cases))

	require.Len(t, cases, 2)
	assert.Equal(t, "basic-001", cases[0].CaseID)
	assert.Contains(t, cases[0].Inputs, "request")
}

func TestExpectedYAMLParses(t *testing.T) {
	var expected map[string]models.ExpectedResult
	require.NoError(t, yaml.Unmarshal([]byte(ExpectedYAML()), &expected))

	require.Contains(t, expected, "basic-001")
	assert.Equal(t, []string{"testing"}, expected["basic-001"].Keywords)
	assert.Equal(t, 10, expected["edge-empty-001"].MinLength)
}

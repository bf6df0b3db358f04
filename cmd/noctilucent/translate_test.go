package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `
Parameters:
  Environment:
    Type: String
Resources:
  DataBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: !Sub "${Environment}-data"
`

func writeTestTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplate), 0644))
	return path
}

func TestRunTranslate_JSONToFile(t *testing.T) {
	templateFile := writeTestTemplate(t)
	outFile := filepath.Join(t.TempDir(), "out.json")

	err := runTranslate(templateFile, translateOptions{
		outputFormat: "json",
		outputPath:   outFile,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var instructions []map[string]any
	require.NoError(t, json.Unmarshal(data, &instructions))
	require.Len(t, instructions, 1)
	assert.Equal(t, "DataBucket", instructions[0]["Name"])
	assert.Equal(t, "AWS::S3::Bucket", instructions[0]["Type"])
}

func TestRunTranslate_HCLToDirectory(t *testing.T) {
	templateFile := writeTestTemplate(t)
	outDir := filepath.Join(t.TempDir(), "out")

	err := runTranslate(templateFile, translateOptions{
		outputFormat: "hcl",
		outputPath:   outDir,
	})
	require.NoError(t, err)

	main, err := os.ReadFile(filepath.Join(outDir, "main.tf"))
	require.NoError(t, err)
	assert.Contains(t, string(main), `resource "aws_s3_bucket" "data_bucket"`)
	assert.Contains(t, string(main), "${var.Environment}-data")

	variables, err := os.ReadFile(filepath.Join(outDir, "variables.tf"))
	require.NoError(t, err)
	assert.Contains(t, string(variables), `variable "Environment"`)
}

func TestRunTranslate_UnknownFormat(t *testing.T) {
	templateFile := writeTestTemplate(t)

	err := runTranslate(templateFile, translateOptions{outputFormat: "toml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRunTranslate_MissingTemplate(t *testing.T) {
	err := runTranslate(filepath.Join(t.TempDir(), "absent.yaml"), translateOptions{
		outputFormat: "json",
	})
	require.Error(t, err)
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()

	assert.Equal(t, "watch [template]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	flag := cmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}

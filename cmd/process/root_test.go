package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubProcessor struct {
	gotFileName string
	results     []models.FileResult
	err         error
}

func (s *stubProcessor) Process(ctx context.Context, fileName string) ([]models.FileResult, error) {
	s.gotFileName = fileName
	return s.results, s.err
}

var sample = []models.FileResult{{
	File:    "f1.csv",
	Records: []models.Line{{Text: "hello", Number: 42, Hex: "abc123def456abc123def456abc123de"}},
}}

func TestRun(t *testing.T) {
	t.Run("prints JSON by default", func(t *testing.T) {
		stub := &stubProcessor{results: sample}
		var out bytes.Buffer

		err := run(context.Background(), stub, &options{fileName: "f1.csv", output: "json"}, &out)

		require.NoError(t, err)
		assert.Equal(t, "f1.csv", stub.gotFileName)
		assert.JSONEq(t, `[{"file":"f1.csv","records":[{"text":"hello","number":42,"hex":"abc123def456abc123def456abc123de"}]}]`, out.String())
	})

	t.Run("prints YAML", func(t *testing.T) {
		var out bytes.Buffer

		err := run(context.Background(), &stubProcessor{results: sample}, &options{output: "yaml"}, &out)

		require.NoError(t, err)
		var decoded []models.FileResult
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, sample, decoded)
	})

	t.Run("returns the listing error", func(t *testing.T) {
		var out bytes.Buffer

		err := run(context.Background(), &stubProcessor{err: &models.ListingError{Err: errors.New("down")}}, &options{output: "json"}, &out)

		assert.EqualError(t, err, models.ListingErrorMessage)
		assert.Empty(t, out.String())
	})
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput("json"))
	assert.NoError(t, validateOutput("yaml"))
	assert.ErrorContains(t, validateOutput("xml"), "unsupported output format")
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--output", "csv"})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "unsupported output format")
}

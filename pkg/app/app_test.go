package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
	"github.com/mconlon17/vivo-person-ingest/pkg/lookup"
	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

const seed = `
- subject: http://vivo.ufl.edu/individual/n100
  predicate: ufVivo:deptID
  object: "64100000"
  literal: true
- subject: http://vivo.ufl.edu/individual/n100
  predicate: rdf:type
  object: foaf:Organization
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// memoryEnv points the configuration at a memory knowledge base and a
// directory of lookup files
func memoryEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KB_BACKEND", "memory")
	t.Setenv("KB_SEED_FILE", writeFile(t, dir, "seed.yaml", seed))
	t.Setenv("LOOKUP_BACKEND", "file")
	t.Setenv("LOOKUP_DIR", dir)
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	writeFile(t, dir, "contact_data.csv",
		"UFID|FIRST_NAME|LAST_NAME|HOME_DEPT\n12345|jane|doe|64100000\n")
	writeFile(t, dir, "privacy_data.csv",
		"UFID|UF_PROTECT_FLG\n12345|N\n67890|N\n")
	writeFile(t, dir, "deptid_exceptions.txt", "# excluded departments\n2707\n")
	writeFile(t, dir, "ufid_exceptions.txt", "67890\n")
	writeFile(t, dir, "uri_exceptions.txt", "")
	writeFile(t, dir, "position_exceptions.txt", "VOLUNTEER\n")
	return dir
}

func TestNewWithMemoryBackend(t *testing.T) {
	memoryEnv(t)
	ctx := context.Background()

	a, err := New(ctx)
	require.NoError(t, err)
	defer a.Close()

	ref, err := a.KB.FindReference(ctx, vivo.PredDeptID, "64100000")
	require.NoError(t, err)
	assert.Equal(t, "http://vivo.ufl.edu/individual/n100", ref)
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	memoryEnv(t)
	t.Setenv("KB_BACKEND", "oracle")

	_, err := New(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}

func TestNewMissingSeedFile(t *testing.T) {
	memoryEnv(t)
	t.Setenv("KB_SEED_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := New(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitStore, ExitCode(err))
}

func TestFileLookupsAndValidator(t *testing.T) {
	memoryEnv(t)
	ctx := context.Background()

	a, err := New(ctx)
	require.NoError(t, err)
	defer a.Close()

	lookups, err := a.OpenLookups(ctx)
	require.NoError(t, err)
	defer lookups.Close()
	assert.Equal(t, lookup.Contact, lookups.Contact.Name())

	v, err := a.Validator(ctx, lookups, time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	res, err := v.Validate(ctx, model.PositionRow{
		Line:               1,
		UFID:               "12345",
		HRPosition:         true,
		DeptID:             "64100000",
		SalaryPlan:         "9AF",
		JobCodeDescription: "ASST PROFESSOR",
		StartDate:          "2014-08-07",
	})
	require.NoError(t, err)
	assert.True(t, res.Valid(), "diagnostics: %v", res.Diagnostics)

	res, err = v.Validate(ctx, model.PositionRow{Line: 2, UFID: "67890"})
	require.NoError(t, err)
	assert.False(t, res.Valid())
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "67890 in ufid_exceptions. Will be skipped.", res.Diagnostics[0].Message)
}

func TestFileLookupsMissingFile(t *testing.T) {
	dir := memoryEnv(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "privacy_data.csv")))

	a, err := New(context.Background())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.FileLookups()
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}

func TestPushLookupsWithoutRedis(t *testing.T) {
	memoryEnv(t)

	a, err := New(context.Background())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.PushLookups(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitStore, ExitCode(err))
}

func TestSource(t *testing.T) {
	memoryEnv(t)
	a, err := New(context.Background())
	require.NoError(t, err)
	defer a.Close()

	src, err := a.Source(context.Background(), SourceFile, "position_data.csv")
	require.NoError(t, err)
	assert.Equal(t, "position_data.csv", src.Name())

	_, err = a.Source(context.Background(), "ftp", "")
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"explicit", WithCode(ExitUsage, errors.New("bad flag")), ExitUsage},
		{"wrapped explicit", fmt.Errorf("run: %w", WithCode(ExitValidation, errors.New("x"))), ExitValidation},
		{"external", ingest.External("fetch person", errors.New("refused")), ExitStore},
		{"output", &ingest.OutputError{Path: "a.rdf", Err: errors.New("disk full")}, ExitWrite},
		{"other", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}

	assert.NoError(t, WithCode(ExitUsage, nil))
}

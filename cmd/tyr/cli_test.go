package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tyr/loader"
	"github.com/vegasq/tyr/query"
)

const peopleCSV = `id,name,age
1,Alice,30
2,Bob,25
3,Charlie,35
`

type person struct {
	Age  int64  `parquet:"age"`
	Name string `parquet:"name"`
}

// runCLI executes the command tree in dir and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// workdir switches into a temp directory holding the fixtures.
func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "people.csv"), []byte(peopleCSV), 0o644))

	f, err := os.Create(filepath.Join(dir, "people.parquet"))
	require.NoError(t, err)
	w := parquet.NewGenericWriter[person](f)
	_, err = w.Write([]person{{Age: 30, Name: "Alice"}, {Age: 25, Name: "Bob"}})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	t.Chdir(dir)
	return dir
}

func TestQuery(t *testing.T) {
	workdir(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "sql argument",
			args: []string{"query", "SELECT name, age FROM ./people.csv WHERE age >= 30 ORDER BY age DESC"},
			want: "name,age\nCharlie,35\nAlice,30\n",
		},
		{
			name: "split arguments",
			args: []string{"query", "SELECT", "name", "FROM", "./people.csv", "LIMIT", "1"},
			want: "name\nAlice\n",
		},
		{
			name:  "stdin",
			stdin: "SELECT id FROM ./people.csv OFFSET 2",
			args:  []string{"query"},
			want:  "id\n3\n",
		},
		{
			name:  "stdin dash",
			stdin: "SELECT id FROM ./people.csv WHERE name = 'Bob'",
			args:  []string{"query", "--file", "-"},
			want:  "id\n2\n",
		},
		{
			name: "parquet",
			args: []string{"query", "SELECT name FROM ./people.parquet ORDER BY age"},
			want: "name\nBob\nAlice\n",
		},
		{
			name: "forced delimiter",
			args: []string{"--delimiter", ";", "query", "SELECT * FROM ./people.csv"},
			want: "\"id,name,age\"\n\"1,Alice,30\"\n\"2,Bob,25\"\n\"3,Charlie,35\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestQuery_Files(t *testing.T) {
	dir := workdir(t)
	sqlPath := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELECT name FROM ./people.csv WHERE age < 30\n"), 0o644))
	outPath := filepath.Join(dir, "out.csv")

	out, _, err := runCLI(t, "", "query", "-i", sqlPath, "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "name\nBob\n", string(got))
}

func TestQuery_EscapeFormulas(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.csv"), []byte("v\n=1+1\nok\n"), 0o644))

	out, _, err := runCLI(t, "", "query", "--escape-formulas", "SELECT v FROM ./f.csv")
	require.NoError(t, err)
	assert.Equal(t, "v\n'=1+1\nok\n", out)
}

func TestQuery_Errors(t *testing.T) {
	workdir(t)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "no sql", args: []string{"query"}, wantErr: errNoSQL},
		{
			name:    "argument and file",
			args:    []string{"query", "-i", "q.sql", "SELECT 1"},
			wantMsg: "both as argument and with --file",
		},
		{
			name:    "missing source",
			args:    []string{"query", "SELECT * FROM ./nope.csv"},
			wantErr: query.ErrSource,
		},
		{
			name:    "unsupported clause",
			args:    []string{"query", "SELECT DISTINCT name FROM ./people.csv"},
			wantErr: query.ErrUnsupportedClause,
		},
		{
			name:    "parse error",
			args:    []string{"query", "SELECT FROM WHERE"},
			wantErr: query.ErrParse,
		},
		{
			name:    "missing column",
			args:    []string{"query", "SELECT salary FROM ./people.csv"},
			wantErr: query.ErrEvaluation,
		},
		{
			name:    "bad log level",
			args:    []string{"--log-level", "loud", "query", "SELECT * FROM ./people.csv"},
			wantMsg: "loud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.stdin, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestQuery_Logging(t *testing.T) {
	workdir(t)

	_, stderr, err := runCLI(t, "", "--log-level", "info", "--log-format", "json",
		"query", "SELECT name FROM ./people.csv")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"query executed"`)
	assert.Contains(t, stderr, `"query_id"`)
}

func TestPlan(t *testing.T) {
	out, _, err := runCLI(t, "", "plan",
		"SELECT name FROM ./people.csv WHERE age > 30 ORDER BY name LIMIT 5")
	require.NoError(t, err)

	want := "SOURCE ./people.csv\n" +
		"FILTER age > 30\n" +
		"ORDER name\n" +
		"PAGINATE offset=0 limit=5\n" +
		"PROJECT name\n"
	assert.Equal(t, want, out)
}

func TestPlan_Error(t *testing.T) {
	_, _, err := runCLI(t, "", "plan", "SELECT a FROM x GROUP BY a")
	assert.ErrorIs(t, err, query.ErrUnsupportedClause)
}

func TestSchema(t *testing.T) {
	workdir(t)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"csv", "people.csv", "column,type\nid,int64\nname,string\nage,int64\n"},
		{"parquet", "people.parquet", "column,type\nage,int64\nname,string\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, "", "schema", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSchema_Storage(t *testing.T) {
	workdir(t)

	out, _, err := runCLI(t, "", "schema", "--storage", "people.parquet")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "column,physical_type,logical_type,repetition", lines[0])
	assert.Equal(t, "age,INT64,", lines[1][:len("age,INT64,")])
	assert.True(t, strings.HasPrefix(lines[2], "name,BYTE_ARRAY,"))

	_, _, err = runCLI(t, "", "schema", "--storage", "people.csv")
	assert.ErrorIs(t, err, loader.ErrNotParquet)
}

func TestSchema_Errors(t *testing.T) {
	workdir(t)

	_, _, err := runCLI(t, "", "schema")
	assert.Error(t, err)

	_, _, err = runCLI(t, "", "schema", "missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tyr v"+Version+"\n"))

	out, _, err = runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "tyr "+Version+"\n", out)
}

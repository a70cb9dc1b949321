package sas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// scriptDef fakes a stdio-mode interpreter with a shell script: every input
// line is echoed to the log (stderr), and lines aimed at the listing, the
// ones carrying "file print", are echoed to stdout as well.
func scriptDef(t *testing.T) ServerDef {
	t.Helper()
	return scripted(t, `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
  *"file print"*) printf '%s\n' "$line" ;;
  esac
  printf '%s\n' "$line" >&2
done
`)
}

// slowListingDef behaves like scriptDef except that listing bytes reach
// stdout well after the matching log lines reach stderr.
func slowListingDef(t *testing.T) ServerDef {
	t.Helper()
	return scripted(t, `#!/bin/sh
while IFS= read -r line; do
  printf '%s\n' "$line" >&2
  case "$line" in
  *"file print"*) sleep 0.05; printf '%s\n' "$line" ;;
  esac
done
`)
}

func scripted(t *testing.T, script string) ServerDef {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakesas.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	def := Local()
	def.Command = "sh " + path
	return def
}

func TestWorkspaceSubmitAndFlush(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(scriptDef(t), Credential{})
	require.NoError(t, err)

	require.NoError(t, w.Submit("data _null_; run;"))
	log, err := w.FlushLog(0)
	assert.NoError(t, err)
	assert.Equal(t, "data _null_; run;\n", log)

	lst, err := w.FlushList(0)
	assert.NoError(t, err)
	assert.Equal(t, "", lst)

	assert.NoError(t, w.Close())
}

func TestWorkspaceSequentialUnits(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(scriptDef(t), Credential{})
	require.NoError(t, err)

	require.NoError(t, w.Submit("proc print; run;"))
	require.NoError(t, w.Submit("proc means; run;"))

	log, err := w.FlushLog(0)
	assert.NoError(t, err)
	assert.Equal(t, "proc print; run;\nproc means; run;\n", log)
	assert.NoError(t, w.Close())
}

func TestWorkspaceListStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(scriptDef(t), Credential{})
	require.NoError(t, err)

	require.NoError(t, w.Submit(`data _null_; file print; put 'hello'; run;`))
	lst, err := w.FlushList(0)
	assert.NoError(t, err)
	assert.Contains(t, lst, "put 'hello';")
	assert.NoError(t, w.Close())
}

// A unit's listing must be flushable as soon as Submit returns, even when
// the interpreter is slow to produce stdout relative to stderr.
func TestWorkspaceListingReadyOnReturn(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(slowListingDef(t), Credential{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Submit(`data _null_; file print; put 'the listing'; run;`))
		lst, err := w.FlushList(0)
		require.NoError(t, err)
		assert.Contains(t, lst, "the listing")
	}
	assert.NoError(t, w.Close())
}

func TestWorkspaceFlushLogged(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, entries := observer.New(zap.DebugLevel)
	w, err := Open(scriptDef(t), Credential{}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.NoError(t, w.Submit(`data _null_; file print; put 'x'; run;`))
	_, err = w.FlushLog(0)
	require.NoError(t, err)
	_, err = w.FlushList(0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, 1, entries.FilterMessage("log flushed").Len())
	assert.Equal(t, 1, entries.FilterMessage("listing flushed").Len())
}

func TestWorkspaceClosedSubmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(scriptDef(t), Credential{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Error(t, w.Submit("data _null_; run;"))
	assert.Error(t, w.Close())
}

func TestWorkspaceFlushAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := Open(scriptDef(t), Credential{})
	require.NoError(t, err)
	require.NoError(t, w.Submit("x 'ls';"))
	require.NoError(t, w.Close())

	// whatever was buffered before close stays flushable
	log, err := w.FlushLog(0)
	assert.NoError(t, err)
	assert.Equal(t, "x 'ls';\n", log)
}

func TestWorkspaceInterpreterGone(t *testing.T) {
	defer goleak.VerifyNone(t)

	def := Local()
	def.Command = "true"
	w, err := Open(def, Credential{})
	require.NoError(t, err)

	err = w.Submit("data _null_; run;")
	assert.Error(t, err)
	_ = w.Close()
}

func TestOpenUnknownProtocol(t *testing.T) {
	_, err := Open(ServerDef{Protocol: "corba"}, Credential{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown protocol")
}

func TestOpenMissingInterpreter(t *testing.T) {
	def := Local()
	def.Command = "definitely-not-a-sas-binary"
	_, err := Open(def, Credential{})
	assert.Error(t, err)
}

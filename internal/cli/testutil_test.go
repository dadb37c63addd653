package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
)

const (
	femaleFirst = `{"Pclass":1,"Sex":"female","Age":30.0,"SibSp":0,"Parch":0,"Fare":100.0,"Embarked":"C"}`
	missingAge  = `{"Pclass":3,"Sex":"male","SibSp":0,"Parch":0,"Fare":10.0,"Embarked":"S"}`
)

// fixture is a bare artifact file accepted as a local model reference.
var fixture = filepath.Join("..", "model", "testdata", "titanic_tree.json")

// syncBuffer is a bytes.Buffer safe for concurrent log writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type result struct {
	code   int
	out    string
	errOut string
}

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// runCLI runs the command tree with captured streams and the given env.
func runCLI(t *testing.T, stdin string, environ map[string]string, args ...string) result {
	t.Helper()
	var out, errOut syncBuffer
	e := &env{in: bytes.NewBufferString(stdin), out: &out, errOut: &errOut, lookup: lookupMap(environ)}
	code := run(context.Background(), args, e)
	return result{code: code, out: out.String(), errOut: errOut.String()}
}

package notify

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
)

const stdoutSeparator = "---"

// Stdout prints each alert followed by a separator line.
type Stdout struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdout(out io.Writer) *Stdout {
	if out == nil {
		out = os.Stdout
	}
	return &Stdout{out: out}
}

func (n *Stdout) Name() string {
	return "stdout"
}

func (n *Stdout) Send(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := io.WriteString(n.out, strings.TrimRight(text, "\n")+"\n"+stdoutSeparator+"\n"); err != nil {
		return crerr.Wrap(err, "write stdout notification")
	}
	return nil
}

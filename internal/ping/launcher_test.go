package ping

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rileyhilliard/pingraph/internal/exec"
)

// scriptLauncher hands out processes that print canned stdout.
type scriptLauncher struct {
	mu     sync.Mutex
	stdout string
	stderr string
	code   int
	err    error
	// hold keeps processes running after stdout is printed until killed.
	hold  bool
	specs []exec.Spec
	procs []*scriptProcess
}

func (l *scriptLauncher) Launch(_ context.Context, spec exec.Spec) (exec.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs = append(l.specs, spec)
	if l.err != nil {
		return nil, l.err
	}

	pr, pw := io.Pipe()
	p := &scriptProcess{stdout: pr, w: pw, code: l.code, stderr: l.stderr, exited: make(chan struct{})}
	l.procs = append(l.procs, p)
	go func() {
		_, _ = io.Copy(pw, strings.NewReader(l.stdout))
		if !l.hold {
			p.exit(false)
		}
	}()
	return p, nil
}

func (l *scriptLauncher) launched() []exec.Spec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]exec.Spec(nil), l.specs...)
}

type scriptProcess struct {
	stdout *io.PipeReader
	w      *io.PipeWriter
	code   int
	stderr string

	once   sync.Once
	mu     sync.Mutex
	killed bool
	exited chan struct{}
}

func (p *scriptProcess) exit(killed bool) {
	p.once.Do(func() {
		p.mu.Lock()
		p.killed = killed
		p.mu.Unlock()
		_ = p.w.Close()
		close(p.exited)
	})
}

func (p *scriptProcess) Stdout() io.Reader { return p.stdout }

func (p *scriptProcess) StderrTail() string { return p.stderr }

func (p *scriptProcess) Kill() error {
	p.exit(true)
	return nil
}

func (p *scriptProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *scriptProcess) Wait() (int, error) {
	<-p.exited
	if p.wasKilled() {
		return -1, nil
	}
	return p.code, nil
}

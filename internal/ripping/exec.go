package ripping

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"sync"
)

// execLauncher starts real subprocesses with merged, unbuffered output.
type execLauncher struct{}

func (execLauncher) Launch(ctx context.Context, binary string, args []string) (process, error) {
	cmd := exec.Command(binary, args...) //nolint:gosec
	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	_ = writer.Close()

	p := &execProcess{
		cmd:   cmd,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}

	go func() {
		defer close(p.lines)
		defer reader.Close()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()

	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

type execProcess struct {
	cmd      *exec.Cmd
	lines    chan string
	done     chan struct{}
	waitErr  error
	killOnce sync.Once
}

func (p *execProcess) Lines() <-chan string {
	return p.lines
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.waitErr
}

func (p *execProcess) Kill() error {
	var err error
	p.killOnce.Do(func() {
		if p.cmd.Process != nil {
			err = p.cmd.Process.Kill()
		}
	})
	return err
}

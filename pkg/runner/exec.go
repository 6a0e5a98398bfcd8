package runner

import(
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// An Executor runs a command line to completion.
type Executor interface {
	Execute(ctx context.Context, argv []string) error
}

// ExecRunner runs the command as a subprocess. Cancelling the context
// kills it.
type ExecRunner struct {
	Verbosity int
}

func (er ExecRunner)Execute(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec: empty command line")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Info().Str("cmd", strings.Join(argv, " ")).Msg("running")
	tStart := time.Now()
	err := cmd.Run()

	if er.Verbosity > 1 || err != nil {
		level := zerolog.DebugLevel
		if err != nil {
			level = zerolog.WarnLevel
		}
		for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
			log.WithLevel(level).Str("bin", argv[0]).Msg(line)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("exec %s: %v (%v)", argv[0], ctx.Err(), err)
		}
		return fmt.Errorf("exec %s: %v; output tail:\n%s", argv[0], err, tail(out.String(), 10))
	}

	log.Info().Dur("elapsed", time.Since(tStart)).Msg("imfit finished")
	return nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

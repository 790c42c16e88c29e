package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/cubed/pkg/decomp"
	"github.com/chazu/cubed/pkg/engine"
)

// errScript marks a script that parsed or ran with errors. The details
// have already been printed.
var errScript = errors.New("script failed")

func newRunCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <script.lisp>",
		Short: "Evaluate a session script and print the updates it applied",
		Long: `Run evaluates a zygomys script against a fresh session. The script may
reconfigure the session with (session :key value ...) and then move the
slider with (slide dx) or (sweep from to steps). Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			src, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			sess, evalErrs, err := engine.NewEngine(configFromContext(ctx)).Evaluate(src)
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				for _, e := range evalErrs {
					logger.Error("script", "file", args[0], "line", e.Line, "err", e.Message)
				}
				return errScript
			}
			prog.done(fmt.Sprintf("Applied %d updates", len(sess.Frames)))

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, runView(sess))
			}
			renderRun(out, sess)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func readScript(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

type runDoc struct {
	Config decomp.Config   `json:"config"`
	Frames []decomp.Update `json:"frames"`
	Final  layoutDoc       `json:"final"`
}

func runView(sess *engine.Session) runDoc {
	return runDoc{
		Config: sess.State.Config(),
		Frames: sess.Frames,
		Final:  layoutView(sess.State),
	}
}

func renderRun(w io.Writer, sess *engine.Session) {
	cfg := sess.State.Config()
	frames := make([]sweepFrame, len(sess.Frames))
	for i, u := range sess.Frames {
		frames[i] = sweepFrame{Update: u, Volumes: decomp.Measure(cfg, sess.State.Layout(), u.Dx)}
	}
	if len(frames) > 0 {
		renderSweep(w, cfg, frames)
	}
	renderLayout(w, sess.State)
}

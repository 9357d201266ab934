package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/maxBezel/billpad/internal/logging"
	"github.com/maxBezel/billpad/session"
)

const evalCaret = "|"

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval KEYS...",
		Short: "Feed keystrokes to a calculator line and print it after each",
		Long: `Each argument is typed key by key, except the editing keys
"<" and ">" (move the caret), "bs" (backspace), "clr" (clear) and "ok"
(commit the line).`,
		Example: `  billpad eval 12+5= bs
  billpad eval --total 500 10%`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEval,
	}
	cmd.Flags().Float64("total", 0, "grand total the line percentages refer to")
	cmd.Flags().Bool("quiet", false, "print only the final line")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gt, _ := cmd.Flags().GetFloat64("total")
	quiet, _ := cmd.Flags().GetBool("quiet")

	opts := session.Options{
		Format:        cfg.Formatter(),
		QuickDiscount: cfg.Input.QuickDiscount,
		Logger:        logging.New(cfg.Log.Level, true, "billpad"),
	}
	sink := session.CommitFunc(func(_ context.Context, _ string, result float64) error {
		gt += result
		return nil
	})
	s := session.New(func() float64 { return gt }, sink, opts)

	out := cmd.OutOrStdout()
	for _, arg := range args {
		err := evalKey(cmd.Context(), s, arg)
		s.Flush()
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		if !quiet {
			printLine(out, s.View())
		}
	}
	if quiet {
		printLine(out, s.View())
	}
	return nil
}

func evalKey(ctx context.Context, s *session.Session, key string) error {
	var err error
	switch key {
	case "<":
		s.Move(-1)
	case ">":
		s.Move(1)
	case "bs":
		_, err = s.Backspace()
	case "clr":
		s.Clear()
	case "ok":
		_, err = s.Enter(ctx)
	default:
		for _, r := range key {
			if _, err = s.Press(r); err != nil {
				break
			}
		}
	}
	return err
}

func printLine(w io.Writer, v session.View) {
	rs := []rune(v.Text)
	c := min(max(v.Caret, 0), len(rs))
	preview := v.Preview
	if preview == "" {
		preview = "0.00"
	}
	fmt.Fprintf(w, "%s%s%s = %s\n", string(rs[:c]), evalCaret, string(rs[c:]), preview)
}

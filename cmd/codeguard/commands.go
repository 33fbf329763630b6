package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/epuerta/codeguard/internal/changeset"
	"github.com/epuerta/codeguard/internal/render"
	"github.com/epuerta/codeguard/internal/ui"
	"github.com/spf13/cobra"
)

// nowFunc stamps default log file names
var nowFunc = time.Now

// renderOptions resolves the preview options for cmd. Auto color only
// triggers when output goes to a terminal.
func (a *app) renderOptions(cmd *cobra.Command) render.Options {
	out, _ := cmd.OutOrStdout().(*os.File)
	return a.cfg.RenderOptions(out)
}

// reportEmpty turns ErrNoPendingChanges into an informational message
func reportEmpty(cmd *cobra.Command, err error) error {
	if errors.Is(err, changeset.ErrNoPendingChanges) {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending changes.")
		return nil
	}
	return err
}

func previewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the diff of every proposed change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}

			opts := a.renderOptions(cmd)
			unified, _ := cmd.Flags().GetBool("unified")
			sideBySide, _ := cmd.Flags().GetBool("side-by-side")
			if unified || sideBySide {
				opts.Format = render.ResolveFormat(unified, sideBySide)
			}
			if width, _ := cmd.Flags().GetInt("width"); width > 0 {
				opts.ColumnWidth = width
			}

			fmt.Fprintln(cmd.OutOrStdout(), cs.Preview(opts))
			return nil
		},
	}
	cmd.Flags().Bool("unified", false, "Show a unified diff")
	cmd.Flags().Bool("side-by-side", false, "Show old and new content in two columns (wins over --unified)")
	cmd.Flags().Int("width", 0, "Column width for side-by-side output")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count added and removed lines per file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}
			writeStats(cmd.OutOrStdout(), cs.Stats())
			return nil
		},
	}
}

func writeStats(w io.Writer, stats changeset.Stats) {
	if stats.TotalFiles == 0 {
		fmt.Fprintln(w, "No pending changes.")
		return
	}
	for _, f := range stats.Files {
		fmt.Fprintf(w, "%-8s +%-5d -%-5d %s\n", f.Kind, f.Additions, f.Deletions, f.Path)
	}
	fmt.Fprintf(w, "%d files changed, %d insertions(+), %d deletions(-)\n",
		stats.TotalFiles, stats.TotalAdditions, stats.TotalDeletions)
}

func saveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Write a plain-text preview or a patch to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}

			asPatch, _ := cmd.Flags().GetBool("patch")
			if !asPatch {
				if err := cs.SavePreview(args[0], a.renderOptions(cmd)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preview saved to %s\n", args[0])
				return nil
			}

			if err := cs.SavePatch(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Patch saved to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Bool("patch", false, "Write a unified patch that git apply understands")
	return cmd
}

func applyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Write every proposed change to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}
			result, err := cs.ApplyChanges()
			if err != nil {
				return reportEmpty(cmd, err)
			}
			return writeApplyResult(cmd.OutOrStdout(), result)
		},
	}
}

// writeApplyResult prints succeeded and failed files and fails when any file failed
func writeApplyResult(w io.Writer, result changeset.ApplyResult) error {
	for _, path := range result.Succeeded {
		fmt.Fprintf(w, "applied  %s\n", path)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(w, "FAILED   %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintf(w, "%d of %d changes applied\n", len(result.Succeeded), result.TotalChanges)
	if !result.OK() {
		return fmt.Errorf("%d changes failed", len(result.Failed))
	}
	return nil
}

func difftoolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "difftool [tool]",
		Short: "Open each proposed change in an external diff viewer",
		Long: `Open each proposed change in an external diff viewer.
The viewer is run once per file as "<tool> <old> <new>". Without an
argument the diff_tool setting is used (default vimdiff).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}
			defer cs.Close()

			tool := a.cfg.DiffTool
			if len(args) == 1 {
				tool = args[0]
			}
			return reportEmpty(cmd, cs.OpenInDiffTool(tool))
		},
	}
}

func reviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Approve or skip each proposed change, then apply the approved ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.changeSet(cmd)
			if err != nil {
				return err
			}

			res, err := ui.RunReview(cs, a.renderOptions(cmd))
			if err != nil {
				return reportEmpty(cmd, err)
			}
			if res.Aborted {
				fmt.Fprintln(cmd.OutOrStdout(), "Review aborted, nothing applied.")
				return nil
			}
			if res.Applied == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes approved.")
				return nil
			}
			return writeApplyResult(cmd.OutOrStdout(), *res.Applied)
		},
	}
}

// completionCmd creates the completion command for shell completion scripts
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for codeguard.
To load completions:

Bash:
  $ source <(codeguard completion bash)

Zsh:
  $ source <(codeguard completion zsh)

Fish:
  $ codeguard completion fish | source
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			default:
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			}
		},
	}

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AntoineGS/tidysnips/internal/insert"
	"github.com/AntoineGS/tidysnips/internal/loader"
	"github.com/AntoineGS/tidysnips/internal/manager"
	"github.com/AntoineGS/tidysnips/internal/platform"
	"github.com/AntoineGS/tidysnips/internal/snippet"
	"github.com/AntoineGS/tidysnips/internal/tui"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var errNoClipboard = errors.New("no clipboard available (is a display server running?)")

// withManager runs fn with a loaded manager and closes it afterwards.
func withManager(fn func(cmd *cobra.Command, args []string, mgr *manager.Manager) error) func(*cobra.Command, []string) error {
	return runWithCancellation(func(cmd *cobra.Command, args []string) error {
		mgr, err := createManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close() //nolint:errcheck // best-effort cleanup

		return fn(cmd, args, mgr)
	})
}

func newListCmd() *cobra.Command {
	var lang, source string

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List snippets",
		Long:  `List the snippets whose name contains query, optionally limited to a language.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			var kind snippet.SourceKind
			if source != "" {
				k, err := snippet.ParseSourceKind(source)
				if err != nil {
					return err
				}
				kind = k
			}
			return mgr.List(cmd.OutOrStdout(), query, lang, kind)
		}),
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Only list snippets for this language")
	cmd.Flags().StringVar(&source, "source", "", "Only list snippets from this source (user, gist or directory)")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a snippet as stored",
		Args:  cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			sn, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sn.Encode())
			return nil
		}),
	}
}

func newVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars <name>",
		Short: "Show the variables of a snippet and their starting values",
		Args:  cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			p, err := mgr.Prepare(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(p.Fields) == 0 {
				fmt.Fprintln(out, "No variables.")
				return nil
			}
			for _, f := range p.Fields {
				fmt.Fprintf(out, "%s = %q\n", f, p.Values[f.Index])
			}
			if p.Unresolved(p.Values) {
				fmt.Fprintln(out, "Some required variables have no value yet.")
			}
			return nil
		}),
	}
}

func newAddCmd() *cobra.Command {
	var (
		file string
		meta []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user snippet",
		Long: `Create a user snippet in the default directory. The template is read
from --file, or from standard input when no file is given.`,
		Args: cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			m, err := parseMeta(meta)
			if err != nil {
				return err
			}
			body, err := readTemplate(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			sn, err := mgr.Create(args[0], body, m)
			if err != nil {
				return err
			}
			if sn.OriginPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Created snippet %s at %s\n", sn.Name, sn.OriginPath)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the template from this file (- for stdin)")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Meta header entry as key=value (repeatable)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without making changes")

	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		newName string
		file    string
		meta    []string
	)

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Rename a snippet or replace its template or meta",
		Long: `Rename a snippet with --name, replace its template with --file, or set
meta entries with --meta key=value. An empty value removes the entry.`,
		Args: cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			sn, err := mgr.Get(args[0])
			if err != nil {
				return err
			}

			body := sn.Template
			if file != "" {
				if body, err = readTemplate(file, cmd.InOrStdin()); err != nil {
					return err
				}
			}

			sn, err = mgr.Update(sn.Name, newName, body)
			if err != nil {
				return err
			}

			if len(meta) > 0 {
				updates, err := parseMeta(meta)
				if err != nil {
					return err
				}
				merged := sn.Meta.Clone()
				for _, k := range updates.Keys() {
					if v, _ := updates.Get(k); v != "" {
						merged.Set(k, v)
					} else {
						merged.Delete(k)
					}
				}
				if sn, err = mgr.SetMeta(sn.Name, merged); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated snippet %s\n", sn.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&newName, "name", "", "New name for the snippet")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Replace the template with this file (- for stdin)")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Meta header entry as key=value (repeatable)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without making changes")

	return cmd
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a snippet and its usage history",
		Args:  cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted snippet %s\n", args[0])
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without making changes")

	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		set    []string
		toClip bool
	)

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Fill in a snippet and print it",
		Long: `Fill in a snippet with --set index=value and print the result. Values not
given start from the snippet defaults or the last values used.`,
		Args: cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			explicit, err := parseAssignments(set)
			if err != nil {
				return err
			}
			p, err := mgr.Prepare(args[0])
			if err != nil {
				return err
			}

			out, err := mgr.Render(args[0], p.MergeValues(explicit))
			if err != nil {
				return err
			}
			return emit(cmd, mgr.Platform, out, toClip)
		}),
	}
	cmd.Flags().StringArrayVarP(&set, "set", "s", nil, "Variable value as index=value (repeatable)")
	cmd.Flags().BoolVar(&toClip, "copy", false, "Copy the result to the clipboard instead of printing it")

	return cmd
}

// emit prints text or copies it to the system clipboard.
func emit(cmd *cobra.Command, plat *platform.Platform, text string, toClip bool) error {
	if !toClip {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if !plat.CanUseClipboard() {
		return errNoClipboard
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
	return nil
}

func newInsertCmd() *cobra.Command {
	var (
		file        string
		at          string
		selection   string
		set         []string
		prepend     string
		appendText  string
		prefilled   bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "insert <name>",
		Short: "Insert a snippet into a file",
		Long: `Insert a snippet into a file at --at line:col, or over the --select range.
Lines and columns start at 1; columns count bytes. The snippet is indented
like the line it lands on. With --dry-run the file is left alone and the
diff is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			cursor, err := parsePosition(at)
			if err != nil {
				return err
			}

			var sel *insert.Range
			if selection != "" {
				r, err := parseRange(selection)
				if err != nil {
					return err
				}
				sel = &r
				cursor = r.Start
			}

			req := manager.InsertRequest{
				Name:      args[0],
				Prepend:   prepend,
				Append:    appendText,
				Prefilled: prefilled,
			}

			if interactive {
				if !tui.IsTerminal() {
					return fmt.Errorf("interactive mode requires a terminal")
				}
				choice, err := tui.Run(mgr, args[0], "")
				if errors.Is(err, tui.ErrCanceled) {
					return nil
				}
				if err != nil {
					return err
				}
				req.Name = choice.Name
				req.Values = choice.Values
			} else {
				explicit, err := parseAssignments(set)
				if err != nil {
					return err
				}
				p, err := mgr.Prepare(args[0])
				if err != nil {
					return err
				}
				req.Values = p.MergeValues(explicit)
			}

			res, err := mgr.InsertFile(file, cursor, sel, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprint(out, res.Diff)
				return nil
			}
			fmt.Fprintf(out, "Inserted %s into %s; cursor at %d:%d\n",
				req.Name, file, res.Plan.Cursor.Line+1, res.Plan.Cursor.Col+1)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File to insert into")
	cmd.Flags().StringVar(&at, "at", "1:1", "Cursor position as line:col")
	cmd.Flags().StringVar(&selection, "select", "", "Selected range as line:col-line:col")
	cmd.Flags().StringArrayVarP(&set, "set", "s", nil, "Variable value as index=value (repeatable)")
	cmd.Flags().StringVar(&prepend, "prepend", "", "Text typed before the snippet trigger")
	cmd.Flags().StringVar(&appendText, "append", "", "Text typed after the snippet trigger")
	cmd.Flags().BoolVar(&prefilled, "prefilled", false, "Replace the cursor line instead of inserting below it")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the snippet and fill in variables interactively")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the diff without changing the file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newPickCmd() *cobra.Command {
	var (
		lang   string
		toClip bool
	)

	cmd := &cobra.Command{
		Use:   "pick [query]",
		Short: "Search snippets interactively and print the filled-in result",
		Args:  cobra.MaximumNArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			if !tui.IsTerminal() {
				return fmt.Errorf("interactive mode requires a terminal; use render for non-interactive use")
			}

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			choice, err := tui.Run(mgr, query, lang)
			if errors.Is(err, tui.ErrCanceled) {
				return nil
			}
			if err != nil {
				return err
			}

			out, err := mgr.Render(choice.Name, choice.Values)
			if err != nil {
				return err
			}
			return emit(cmd, mgr.Platform, out, toClip)
		}),
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Only offer snippets for this language")
	cmd.Flags().BoolVar(&toClip, "copy", false, "Copy the result to the clipboard instead of printing it")

	return cmd
}

func newRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently used snippets",
		Args:  cobra.NoArgs,
		RunE: withManager(func(cmd *cobra.Command, _ []string, mgr *manager.Manager) error {
			recent, err := mgr.Recent(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "No usage history.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tUSES\tLAST USED")
			for _, r := range recent {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.SnippetName, r.Uses, r.LastUsed.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of snippets to list")

	return cmd
}

func newImportGistCmd() *cobra.Command {
	var deleteLocal bool

	cmd := &cobra.Command{
		Use:   "import-gist <file>",
		Short: "Import snippets from a downloaded gist API response",
		Long: `Import the files of a gist as gist snippets. <file> holds the JSON
response of the GitHub gist API (see 'tidysnips gist-api'); use - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: withManager(func(cmd *cobra.Command, args []string, mgr *manager.Manager) error {
			data, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}

			report, err := mgr.ImportGist(data, deleteLocal)
			if err != nil {
				return err
			}
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", e)
			}

			out := cmd.OutOrStdout()
			if report.Removed > 0 {
				fmt.Fprintf(out, "Removed %d local gist snippets\n", report.Removed)
			}
			fmt.Fprintf(out, "Imported %d snippets\n", report.Imported)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&deleteLocal, "delete-local", false, "Remove previously imported gist snippets first")

	return cmd
}

func newExportGistCmd() *cobra.Command {
	var (
		existing string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export-gist",
		Short: "Build the gist upload payload for your snippets",
		Long: `Write the JSON body that creates or updates the snippet collection gist.
Pass the current API response of that gist with --existing to update it;
files no longer present locally are then deleted from the gist.`,
		Args: cobra.NoArgs,
		RunE: withManager(func(cmd *cobra.Command, _ []string, mgr *manager.Manager) error {
			var current []byte
			if existing != "" {
				data, err := readPayload(cmd, existing)
				if err != nil {
					return err
				}
				current = data
			}

			payload, err := mgr.ExportGist(current)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
				return err
			}
			if err := os.WriteFile(output, payload, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Gist payload written to %s\n", output)
			return nil
		}),
	}
	cmd.Flags().StringVar(&existing, "existing", "", "API response of the existing collection gist")
	cmd.Flags().StringVar(&output, "output", "", "Write the payload to this file instead of stdout")

	return cmd
}

func newGistAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gist-api <gist-url>",
		Short: "Print the API endpoint for a gist or a user's gists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loader.ParseGistURL(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref.APIURL())
			return nil
		},
	}
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		text, err := readTemplate("-", cmd.InOrStdin())
		return []byte(text), err
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen payload file
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

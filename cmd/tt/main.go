package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tt/internal/config"
	"tt/internal/task"
	"tt/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	add    string
	edit   string
	finish string
	remove string
	sub    string
	tag    string
	force  bool

	list          string
	taskDir       string
	deleteIfEmpty bool

	grep    string
	verbose bool
	quiet   bool
	done    bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "tt [flags] [TEXT...]",
		Short: "tt is for people that want to do things, not organize their tasks",
		Long: `tt keeps task lists in plain-text files, one list per file.
Tasks are referenced by the shortest unique prefix of their id, so a
couple of characters is usually enough. With no action flag the given
TEXT is added as a new task; with no TEXT the list is printed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.add, "add", "a", "", "use ID for the new task instead of a minted one")
	f.StringVarP(&opts.edit, "edit", "e", "", "edit TASK to contain the given text")
	f.StringVarP(&opts.finish, "finish", "f", "", "mark TASK as finished")
	f.StringVarP(&opts.remove, "remove", "r", "", "remove TASK from the list")
	f.StringVarP(&opts.sub, "sub", "s", "", "add the new task as a sub-task of PARENT")
	f.StringVarP(&opts.tag, "tag", "x", "", "add or remove tags on TASK")
	f.BoolVar(&opts.force, "force", false, "force an action even if it is not recommended")
	f.StringVarP(&opts.list, "list", "l", "", "work on LIST")
	f.StringVarP(&opts.taskDir, "task-dir", "t", "", "work on the lists in DIR")
	f.BoolVarP(&opts.deleteIfEmpty, "delete-if-empty", "d", false, "delete the task file if it becomes empty")
	f.StringVarP(&opts.grep, "grep", "g", "", "print only tasks that contain WORD")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print more detailed output (full task ids, etc)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "print less detailed output (no task ids, etc)")
	f.BoolVar(&opts.done, "done", false, "list done tasks instead of unfinished ones")

	cmd.AddCommand(newUICmd())
	return cmd
}

func run(cmd *cobra.Command, opts options, args []string) error {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		return err
	}
	if opts.taskDir == "" {
		opts.taskDir = cfg.TaskDir
	}
	if opts.list == "" {
		opts.list = cfg.List
	}
	deleteIfEmpty := opts.deleteIfEmpty || cfg.DeleteIfEmpty

	text := strings.TrimSpace(strings.Join(args, " "))
	if strings.Contains(text, "\n") {
		return errors.New("task text cannot contain newlines")
	}

	openPath, donePath := task.ListPaths(opts.taskDir, opts.list)
	store := task.NewStore()
	if err := store.Load(openPath, donePath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.finish != "":
		res, err := store.Finish(opts.finish, opts.force)
		if err != nil {
			return err
		}
		if res.Blocked {
			fmt.Fprintln(out, "cannot finish task - it has open sub-tasks. use --force to override.")
			return nil
		}
	case opts.remove != "":
		if err := store.Remove(opts.remove, opts.force); err != nil {
			return err
		}
	case opts.edit != "":
		if err := store.Edit(opts.edit, text); err != nil {
			return err
		}
	case opts.tag != "":
		if err := store.Tag(opts.tag, text); err != nil {
			return err
		}
	case text != "":
		id, err := store.Add(text, opts.add, opts.sub)
		if err != nil {
			return err
		}
		if !opts.quiet {
			if opts.verbose || opts.add != "" {
				fmt.Fprintln(out, id)
			} else {
				fmt.Fprintln(out, task.Prefixes(store.OpenIDs())[id])
			}
		}
	default:
		kind := task.KindOpen
		if opts.done {
			kind = task.KindDone
		}
		rows := store.List(kind, task.ListOptions{Grep: opts.grep, Verbose: opts.verbose})
		for _, line := range task.FormatRows(rows, opts.quiet) {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	return store.Write(openPath, donePath, deleteIfEmpty)
}

func newUICmd() *cobra.Command {
	var listName, taskDir string
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse and edit the list interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
			if err != nil {
				return err
			}
			if taskDir == "" {
				taskDir = cfg.TaskDir
			}
			if listName == "" {
				listName = cfg.List
			}
			openPath, donePath := task.ListPaths(taskDir, listName)
			return ui.Run(cfg, openPath, donePath)
		},
	}
	cmd.Flags().StringVarP(&listName, "list", "l", "", "work on LIST")
	cmd.Flags().StringVarP(&taskDir, "task-dir", "t", "", "work on the lists in DIR")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/form"
	"taskboard/internal/models"
	"taskboard/internal/server"
	"taskboard/internal/storage"
	"taskboard/internal/store"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Four-column task board",
	Long: `taskboard keeps a personal board of task cards in four columns:
To Do, In Progress, Review and Completed.
The board is stored as one JSON document in the configured key-value backend
(sqlite file by default). Run 'taskboard serve' for the HTTP/websocket API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, v.GetString("config"))
		if err != nil {
			return err
		}
		cfg.ConfigureLogging()
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
}

type cfgKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cfgKey{}, cfg)
}

func configFrom(ctx context.Context) *config.Config {
	return ctx.Value(cfgKey{}).(*config.Config)
}

func init() {
	addPersistentFlags()
	registerCommands()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// flagKeys maps persistent flags onto config keys. An unchanged flag never
// shadows a value from the config file or environment.
var flagKeys = map[string]string{
	"config":            "config",
	"storage-driver":    "storage.driver",
	"storage-path":      "storage.path",
	"storage-redis-url": "storage.redis_url",
	"storage-key":       "storage.key",
	"log-level":         "log.level",
	"json":              "json",
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (yaml)")
	flags.String("storage-driver", "", "storage backend: sqlite, redis or memory")
	flags.String("storage-path", "", "sqlite database file")
	flags.String("storage-redis-url", "", "redis connection string")
	flags.String("storage-key", "", "key the board is stored under")
	flags.String("log-level", "", "log level")
	flags.Bool("json", false, "output JSON")
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd(), listCmd(), addCmd(), editCmd(), moveCmd(), dropCmd(), rmCmd(), optionsCmd(), resetCmd())
}

// openStore loads the board from the configured backend. The returned
// function closes the backend.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg := configFrom(ctx)
	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, nil, err
	}
	st := store.New(ctx, kv, store.WithKey(cfg.Storage.Key))
	return st, func() {
		if err := kv.Close(); err != nil {
			log.WithError(err).Warn("close storage")
		}
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := server.Init(cmd.Context(), configFrom(cmd.Context()))
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cols := board.Group(st.List())
			if v.GetBool("json") {
				return printJSON(cols)
			}
			renderBoard(cols)
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var d form.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var m form.Modal
			m.OpenNew()
			if err := m.Submit(cmd.Context(), st, d); err != nil {
				return err
			}
			created := st.List()[0]
			if v.GetBool("json") {
				return printJSON(created)
			}
			fmt.Printf("created %s in %s\n", created.ID, created.Status.Meta().Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&d.Description, "description", "", "task description")
	cmd.Flags().StringVar((*string)(&d.Status), "status", string(models.StatusTodo), "todo, in_progress, review or completed")
	cmd.Flags().StringVar((*string)(&d.Priority), "priority", string(models.PriorityMedium), "low, medium or high")
	return cmd
}

func editCmd() *cobra.Command {
	var title, description, status, priority string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			task, ok := st.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", board.ErrUnknownTask, args[0])
			}
			var m form.Modal
			m.OpenEdit(task)
			d := m.Draft()
			flags := cmd.Flags()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("description") {
				d.Description = description
			}
			if flags.Changed("status") {
				d.Status = models.TaskStatus(status)
			}
			if flags.Changed("priority") {
				d.Priority = models.TaskPriority(priority)
			}
			if err := m.Submit(cmd.Context(), st, d); err != nil {
				return err
			}
			updated, _ := st.Get(task.ID)
			if v.GetBool("json") {
				return printJSON(updated)
			}
			fmt.Printf("updated %s\n", updated.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description (empty clears it)")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Send a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			tr, err := board.NewController(st).ChangeStatus(cmd.Context(), args[0], models.TaskStatus(args[1]))
			if err != nil {
				return err
			}
			return printTransition(tr)
		},
	}
}

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <id> <target>",
		Short: "Drag a task onto a drop target (empty:<status>, task:<id>, <status>)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := board.ParseTarget(args[1])
			if err != nil {
				return err
			}
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			c := board.NewController(st)
			if err := c.Start(args[0]); err != nil {
				return err
			}
			over, err := c.Over(cmd.Context(), target)
			if err != nil {
				c.Cancel()
				return err
			}
			tr, err := c.End(cmd.Context(), &target)
			if err != nil {
				return err
			}
			// the column change already happened while hovering
			if over.Moved {
				tr.From, tr.Moved = over.From, true
			}
			return printTransition(tr)
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if !st.Delete(cmd.Context(), args[0]) {
				return fmt.Errorf("%w: %s", board.ErrUnknownTask, args[0])
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the board with the sample tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := st.Reset(cmd.Context()); err != nil {
				return err
			}
			cols := board.Group(st.List())
			if v.GetBool("json") {
				return printJSON(cols)
			}
			renderBoard(cols)
			return nil
		},
	}
}

func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options <id>",
		Short: "List the columns a task can be sent to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			task, ok := st.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", board.ErrUnknownTask, args[0])
			}
			opts := board.StatusOptions(task)
			if v.GetBool("json") {
				return printJSON(opts)
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Status", "Label", "Current"})
			for _, o := range opts {
				mark := ""
				if o.Current {
					mark = "*"
				}
				t.AppendRow(table.Row{o.Status, o.Label, mark})
			}
			t.Render()
			return nil
		},
	}
}

func renderBoard(cols []board.Column) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "ID", "Title", "Priority", "Tags"})
	for _, col := range cols {
		heading := fmt.Sprintf("%s (%d)", col.Title, col.Count)
		if col.Count == 0 {
			t.AppendRow(table.Row{heading, "", "No tasks", "", ""})
		}
		for i, task := range col.Tasks {
			if i > 0 {
				heading = ""
			}
			t.AppendRow(table.Row{heading, task.ID, task.Title, task.Priority, strings.Join(task.Tags, ",")})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func printTransition(tr board.Transition) error {
	if v.GetBool("json") {
		return printJSON(tr)
	}
	switch {
	case tr.Moved:
		fmt.Printf("moved %s: %s -> %s\n", tr.TaskID, tr.From.Meta().Title, tr.To.Meta().Title)
	case tr.ReorderIgnored:
		fmt.Printf("%s stays in %s (ordering within a column is not saved)\n", tr.TaskID, tr.To.Meta().Title)
	default:
		fmt.Printf("%s unchanged\n", tr.TaskID)
	}
	return nil
}

func printJSON(val any) error {
	data, err := sonic.ConfigStd.MarshalIndent(val, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

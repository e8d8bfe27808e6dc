package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"todo-go/internal/app"
	"todo-go/internal/config"
	"todo-go/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a TodoApp. The caller must defer app.Close().
// command identifies the CLI command being run; console receives a copy of the log.
func newApp(command string, console io.Writer) (*app.TodoApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewTodoApp(cfg, command, console)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var rootCmd = &cobra.Command{
	Use:          "todo",
	Short:        "A small TODO list backed by DynamoDB",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		storeType, _ := cmd.Flags().GetString("store")
		cfg.Store.Type = storeType
		if storeType == "sqlite" {
			cfg.Store.SQLitePath = defaults["sqlite_path"]
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Store:    %s\n", cfg.Store.Type)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		printConfig(os.Stdout, cfg)
		return nil
	},
}

// table command
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage the todo table",
}

var tableCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the todo table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("table-create", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.EnsureTable(cmd.Context())
		if err != nil {
			return fmt.Errorf("creating table: %w", err)
		}

		table := a.Config().Store.Table
		if created {
			fmt.Printf("Created table %s\n", table)
		} else {
			fmt.Printf("Table %s already exists\n", table)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the RPC endpoints and the web page",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("serve", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.Config().Server.Addr = addr
		}

		server, page, err := a.NewServer()
		if err != nil {
			return err
		}
		defer page.Wait()

		fmt.Printf("Serving on %s\n", a.ClientEndpoint())
		return server.Serve(cmd.Context(), a.Config().Server.Addr)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI against a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return fmt.Errorf("todo tui requires a terminal")
		}

		a, err := newApp("tui", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if url, _ := cmd.Flags().GetString("url"); url != "" {
			a.Config().Client.BaseURL = url
		}

		return tui.Run(cmd.Context(), tui.Options{
			API:    a.RemoteAPI(),
			Logger: a.Logger(),
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("list", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		todos, err := a.ListTodos(cmd.Context())
		if err != nil {
			return err
		}

		if isTerminal(os.Stdout) {
			printTodosStyled(os.Stdout, todos)
		} else {
			printTodos(os.Stdout, todos)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("add", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.AddTodo(cmd.Context(), args[0], description)
		if err != nil {
			return err
		}

		fmt.Printf("Added %s\n", t.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title or description of a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var title, description *string
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			description = &v
		}
		if title == nil && description == nil {
			return fmt.Errorf("nothing to change: pass --title and/or --description")
		}

		a, err := newApp("edit", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.EditTodo(cmd.Context(), args[0], title, description)
		if err != nil {
			return err
		}

		fmt.Printf("Updated %s\n", t.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("rm", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveTodo(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("store", "dynamodb", "Item store type: dynamodb, sqlite, or memory")

	// table subcommands
	tableCmd.AddCommand(tableCreateCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().String("url", "", "Server base URL (overrides client.base_url)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("description", "d", "", "Todo description")
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	rootCmd.AddCommand(rmCmd)
}

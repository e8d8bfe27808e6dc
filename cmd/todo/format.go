package main

import (
	"fmt"
	"io"
	"strings"

	"todo-go/internal/config"
	"todo-go/internal/todo"

	"github.com/charmbracelet/lipgloss"
)

const createdLayout = "2006-01-02 15:04"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// printTodos writes one tab-separated line per todo: id, created, title, description.
func printTodos(w io.Writer, todos []todo.Todo) {
	for _, t := range todos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Created.UTC().Format(createdLayout), t.Title, t.Description)
	}
}

// printTodosStyled renders the todos as a bordered panel.
func printTodosStyled(w io.Writer, todos []todo.Todo) {
	lines := []string{titleStyle.Render("TODO LIST"), ""}
	if len(todos) == 0 {
		lines = append(lines, mutedStyle.Render("No Todos"))
	}
	for _, t := range todos {
		lines = append(lines, fmt.Sprintf("%s  %s", idStyle.Render(t.ID), titleStyle.Render(t.Title)))
		if t.Description != "" {
			lines = append(lines, "  "+t.Description)
		}
		lines = append(lines, "  "+mutedStyle.Render(t.Created.Local().Format(createdLayout)))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	fmt.Fprintln(w, border.Render(strings.Join(lines, "\n")))
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Log Dir:    %s\n", cfg.LogDir)
	fmt.Fprintf(w, "Store:      %s\n", cfg.Store.Type)
	fmt.Fprintf(w, "Table:      %s\n", cfg.Store.Table)
	switch cfg.Store.Type {
	case "dynamodb":
		if cfg.Store.LocalEndpoint != "" {
			fmt.Fprintf(w, "Endpoint:   %s\n", cfg.Store.LocalEndpoint)
		}
		if cfg.Store.Region != "" {
			fmt.Fprintf(w, "Region:     %s\n", cfg.Store.Region)
		}
	case "sqlite":
		fmt.Fprintf(w, "SQLite:     %s\n", cfg.Store.SQLitePath)
	}
	fmt.Fprintf(w, "Listen:     %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "API Prefix: %s\n", cfg.Server.APIPrefix)
	if cfg.Client.BaseURL != "" {
		fmt.Fprintf(w, "Client URL: %s\n", cfg.Client.BaseURL)
	}
}

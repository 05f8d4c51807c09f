package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "resource-browser",
		Short:        "Browse the resource tree of an M2M service platform",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the browser UI against a local platform
  resource-browser serve --config /etc/resource-browser.yaml

  # Print one resource from the terminal
  resource-browser get nscl --url http://localhost:8080 --user admin --password admin
`),
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGetCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newGetCmd() *cobra.Command {
	var (
		baseURL    string
		apiContext string
		user       string
		password   string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "get <identifier>",
		Short: "Fetch one resource and print its children and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(baseURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid --url %q", baseURL)
			}
			platform := newPlatformClient(u, timeout)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sess := sessionData{Username: user, Password: password, Context: apiContext}
			view, err := platform.fetchResource(ctx, sess, args[0])
			if err != nil {
				return errors.New(statusLine(err))
			}
			printResource(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "platform base URL")
	cmd.Flags().StringVar(&apiContext, "context", defaultContext, "platform API context path")
	cmd.Flags().StringVar(&user, "user", "admin", "platform user")
	cmd.Flags().StringVar(&password, "password", "admin", "platform password")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultRequestTimeout, "request timeout")
	return cmd
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")).Underline(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
)

func printResource(w io.Writer, view resourceView) {
	fmt.Fprintln(w, titleStyle.Render(view.RootName+" "+view.ID))
	fmt.Fprintln(w, mutedStyle.Render(view.URL))

	if len(view.Children) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("Children"))
		for _, child := range view.Children {
			printTreeEntry(w, child, 1)
		}
	}

	if len(view.Attributes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("Attributes"))
		for _, attr := range view.Attributes {
			fmt.Fprintf(w, "  %s: %s\n", labelStyle.Render(attr.Name), attributeSummary(attr))
		}
	}
}

func printTreeEntry(w io.Writer, entry treeEntry, depth int) {
	indent := strings.Repeat("  ", depth)
	if entry.IsCollection() {
		fmt.Fprintf(w, "%s%s %s\n", indent, labelStyle.Render(entry.Label), mutedStyle.Render(fmt.Sprintf("(%d)", len(entry.Items))))
		for _, item := range entry.Items {
			printTreeEntry(w, item, depth+1)
		}
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, labelStyle.Render(entry.Label), mutedStyle.Render(entry.Target))
}

func attributeSummary(attr attributeField) string {
	switch attr.Kind {
	case fieldContent:
		if attr.Content == nil {
			return ""
		}
		if attr.Content.Error != "" {
			return attr.Content.Error
		}
		parts := make([]string, 0, len(attr.Content.Entries))
		for _, e := range attr.Content.Entries {
			switch {
			case e.Action != nil:
				parts = append(parts, fmt.Sprintf("[%s %s]", e.Action.Kind, e.Action.Href))
			case e.Row != nil:
				parts = append(parts, e.Row.Name+"="+e.Row.Value)
			}
		}
		return strings.Join(parts, ", ")
	case fieldURIList, fieldSearchStrings:
		return strings.Join(attr.Values, ", ")
	case fieldAnnounceTo:
		parts := make([]string, 0, len(attr.Pairs))
		for _, p := range attr.Pairs {
			parts = append(parts, p.Name+"="+p.Value)
		}
		return strings.Join(parts, ", ")
	case fieldPermissions:
		parts := make([]string, 0, len(attr.Permissions))
		for _, p := range attr.Permissions {
			parts = append(parts, fmt.Sprintf("%s flags=%s holders=%s", p.ID, strings.Join(p.Flags, "|"), strings.Join(p.Holders, "|")))
		}
		return strings.Join(parts, "; ")
	case fieldAPoCPaths:
		parts := make([]string, 0, len(attr.Paths))
		for _, p := range attr.Paths {
			parts = append(parts, p.Path)
		}
		return strings.Join(parts, ", ")
	default:
		return attr.Text
	}
}

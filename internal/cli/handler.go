// Package cli provides command-line interface handling for the key-value
// store: a Cobra command tree for scripted use, plus an interactive REPL
// mode for exploratory sessions.
package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jassi-singh/logcask/internal/engine"
)

// Handler wires the storage engine to both the Cobra command tree and the
// interactive REPL.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new CLI handler with the given engine.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Root builds the Cobra command tree rooted at "logcask", with one
// subcommand per engine operation plus an interactive "repl" mode.
func (h *Handler) Root() *cobra.Command {
	root := &cobra.Command{
		Use:     "logcask",
		Short:   "A log-structured key-value store",
		Version: "0.1.0",
	}

	root.AddCommand(
		h.putCmd(),
		h.getCmd(),
		h.deleteCmd(),
		h.scanCmd(),
		h.compactCmd(),
		h.statsCmd(),
		h.replCmd(),
	)
	return root
}

func (h *Handler) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.engine.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func (h *Handler) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := h.engine.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func (h *Handler) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.engine.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func (h *Handler) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <start> <end>",
		Short: "List keys in [start, end], inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range h.engine.Scan(args[0], args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func (h *Handler) compactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Rewrite live keys into a fresh segment and remove superseded segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.engine.Compact(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func (h *Handler) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print engine bookkeeping: active segment, size, key count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := h.engine.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "active_segment=%d active_size=%d segments=%d keys=%d\n",
				s.ActiveSegmentID, s.ActiveSize, s.SegmentCount, s.KeyCount)
			return nil
		},
	}
}

func (h *Handler) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive PUT/GET/DELETE/SCAN session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.runREPL()
		},
	}
}

// runREPL starts the interactive command loop, processing user input until
// an exit command is received or an error occurs.
func (h *Handler) runREPL() error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("logcask - log-structured key-value store")
	fmt.Println("Commands: PUT <key> <value>, GET <key>, DELETE <key>, SCAN <start> <end>, STATS, EXIT")
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		parts := strings.Fields(line)
		command := strings.ToUpper(parts[0])

		switch command {
		case "PUT":
			h.replPut(parts)
		case "GET":
			h.replGet(parts)
		case "DELETE":
			h.replDelete(parts)
		case "SCAN":
			h.replScan(parts)
		case "STATS":
			h.replStats()
		case "EXIT", "QUIT":
			slog.Info("cli: shutdown requested by user")
			fmt.Println("Goodbye!")
			return nil
		default:
			slog.Warn("cli: unknown command received", "command", command)
			fmt.Printf("Unknown command: %s\n", command)
		}

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func (h *Handler) replPut(parts []string) {
	if len(parts) < 3 {
		fmt.Println("Usage: PUT <key> <value>")
		return
	}
	key := parts[1]
	value := strings.Join(parts[2:], " ")
	if err := h.engine.Set(key, value); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (h *Handler) replGet(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: GET <key>")
		return
	}
	value, err := h.engine.Get(parts[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(value)
}

func (h *Handler) replDelete(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: DELETE <key>")
		return
	}
	if err := h.engine.Delete(parts[1]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (h *Handler) replScan(parts []string) {
	if len(parts) < 3 {
		fmt.Println("Usage: SCAN <start> <end>")
		return
	}
	for _, key := range h.engine.Scan(parts[1], parts[2]) {
		fmt.Println(key)
	}
}

func (h *Handler) replStats() {
	s := h.engine.Stats()
	fmt.Printf("active_segment=%d active_size=%d segments=%d keys=%d\n",
		s.ActiveSegmentID, s.ActiveSize, s.SegmentCount, s.KeyCount)
}

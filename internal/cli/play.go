package cli

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Join a game as an interactive player",
		Long: `play connects to the game server and joins the session as a player.

Server messages are printed as they arrive. Lines typed on stdin are sent
as guesses. Disconnect with Ctrl+D or Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("tcp", cfg.GameAddr)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", cfg.GameAddr, err)
			}
			defer func() { _ = conn.Close() }()

			fmt.Printf("Connected to %s\n", cfg.GameAddr)

			// Server messages stream independently of the input prompt
			done := make(chan struct{})
			go func() {
				defer close(done)
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					fmt.Println(scanner.Text())
				}
			}()

			input := bufio.NewScanner(os.Stdin)
			for {
				lineCh := make(chan string, 1)
				go func() {
					if input.Scan() {
						lineCh <- input.Text()
					} else {
						close(lineCh)
					}
				}()

				select {
				case <-done:
					fmt.Println("Disconnected from server.")
					return nil
				case line, ok := <-lineCh:
					if !ok {
						return nil
					}
					line = strings.TrimSpace(line)
					if line == "" {
						continue
					}
					if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
						return fmt.Errorf("failed to send guess: %w", err)
					}
				}
			}
		},
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"wsup/internal/format"
	"wsup/internal/vars"
)

var sendCmd = &cobra.Command{
	Use:   "send <url>",
	Short: "Send a one-shot message to a WebSocket endpoint",
	Long: `Connect to a WebSocket endpoint, send a single message, and print any
replies received within the listen window.

The message may be given positionally or with -m, and may contain {{variable}}
placeholders, filled from --var flags:
  wsup send wss://echo.example.com '{"user": "{{name}}"}' --var name=alice`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeEndpointURLs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		url := args[0]

		message, _ := cmd.Flags().GetString("message")
		if len(args) > 1 {
			message = args[1]
		}
		varFlags, _ := cmd.Flags().GetStringSlice("var")
		listen, _ := cmd.Flags().GetDuration("listen")

		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("message is empty, pass it as an argument or with -m")
		}

		values := make(map[string]string, len(varFlags))
		for _, v := range varFlags {
			name, value, ok := strings.Cut(v, "=")
			if !ok {
				return fmt.Errorf("invalid --var %q, expected name=value", v)
			}
			values[name] = value
		}

		resolved := vars.Resolve(message, values)
		if vars.HasUnresolved(resolved) {
			color.Yellow("warning: unresolved variables: %s", strings.Join(vars.Parse(resolved), ", "))
		}

		dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		ws, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", url, err)
		}
		defer ws.Close()

		appInstance.Library.AddToHistory(ctx, url)
		color.Green("connected to %s", url)

		if err := ws.WriteMessage(websocket.TextMessage, []byte(resolved)); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		fmt.Printf("%s %s\n", color.CyanString("→ sent"), resolved)

		if listen <= 0 {
			return closeQuietly(ws)
		}

		deadline := time.Now().Add(listen)
		ws.SetReadDeadline(deadline)
		for {
			msgType, data, err := ws.ReadMessage()
			if err != nil {
				break
			}
			switch msgType {
			case websocket.BinaryMessage:
				fmt.Printf("%s Binary data (%s)\n", color.MagentaString("← recv"), format.Bytes(len(data)))
			default:
				content := string(data)
				if json.Valid(data) {
					content = format.JSON(content)
				}
				fmt.Printf("%s %s\n", color.MagentaString("← recv"), content)
			}
		}

		return closeQuietly(ws)
	},
}

func closeQuietly(ws *websocket.Conn) error {
	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

func init() {
	sendCmd.Flags().StringP("message", "m", "", "message payload to send")
	sendCmd.Flags().StringSlice("var", nil, "variable value as name=value (repeatable)")
	sendCmd.Flags().DurationP("listen", "l", 2*time.Second, "how long to wait for replies (0 to skip)")

	rootCmd.AddCommand(sendCmd)
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/sazed/internal/service/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running Sazed instance",
	Long:  `Minimal REPL over the HTTP API. Set SAZED_URL and API_KEY to point at a remote instance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := os.Getenv("SAZED_URL")
		if base == "" {
			base = "http://localhost:8000"
		}
		apiKey := os.Getenv("API_KEY")

		fmt.Println(ui.TitleStyle.Render("Sazed — ctrl+c to exit"))
		fmt.Printf("Connecting to %s\n\n", base)

		client := &http.Client{Timeout: 60 * time.Second}
		scanner := bufio.NewScanner(os.Stdin)
		var sessionID string

		for {
			fmt.Print(ui.PromptStyle.Render("You: "))
			if !scanner.Scan() {
				fmt.Println("\nBye.")
				return nil
			}
			msg := strings.TrimSpace(scanner.Text())
			if msg == "" {
				continue
			}

			response, newSessionID, err := sendChat(client, base, apiKey, sessionID, msg)
			if err != nil {
				fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("[error] %v", err)))
				fmt.Println()
				continue
			}
			sessionID = newSessionID

			fmt.Printf("\nSazed: %s\n", response)
			fmt.Println(ui.DescStyle.Render(fmt.Sprintf("[session: %.8s...]", sessionID)))
			fmt.Println()
		}
	},
}

func sendChat(client *http.Client, base, apiKey, sessionID, message string) (string, string, error) {
	body, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequest(http.MethodPost, base+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out struct {
		SessionID string `json:"session_id"`
		Response  string `json:"response"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", err
	}
	return out.Response, out.SessionID, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"free-chat-client/config"
	"free-chat-client/internal/domain"
	"free-chat-client/internal/logging"
	"free-chat-client/internal/send"
	"free-chat-client/internal/session"
	"free-chat-client/internal/store"
	"free-chat-client/internal/syncer"
	"free-chat-client/internal/transport"
)

var reader = bufio.NewReader(os.Stdin)

type app struct {
	sessions     *session.Manager
	conversation *store.Store
	scheduler    *syncer.Scheduler
	coordinator  *send.Coordinator
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	tokenPath, err := cfg.TokenPath()
	if err != nil {
		log.Fatalf("failed to resolve token path: %v", err)
	}

	client := transport.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout)
	sessions := session.NewManager(client, session.NewTokenStore(tokenPath), logger)
	conversation := store.NewStore(cfg.Sync.MatchWindow)
	scheduler := syncer.NewScheduler(client, sessions, conversation, cfg.Sync.Interval, logger)
	coordinator := send.NewCoordinator(client, sessions, conversation, scheduler, logger)

	sessions.OnLogout(scheduler.Stop)
	sessions.OnLogout(conversation.Clear)

	a := &app{
		sessions:     sessions,
		conversation: conversation,
		scheduler:    scheduler,
		coordinator:  coordinator,
	}

	fmt.Println("Welcome to FreeChat CLI")

	// Resume a persisted session instead of re-prompting credentials.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	identity, err := sessions.Validate(ctx)
	cancel()
	if err == nil {
		fmt.Printf("Resumed session for %s\n", identity.Username)
		if err := scheduler.Start(); err != nil {
			fmt.Printf("Failed to start sync: %v\n", err)
		}
	}

	for {
		if a.sessions.Session() == nil {
			a.printAuthMenu()
		} else {
			a.printMainMenu()
		}
	}
}

func (a *app) printAuthMenu() {
	fmt.Println("\n=== Auth Menu ===")
	fmt.Println("1. Login")
	fmt.Println("2. Exit")
	fmt.Print("> ")

	switch readLine() {
	case "1":
		a.handleLogin()
	case "2":
		a.exit()
	default:
		fmt.Println("Invalid choice")
	}
}

func (a *app) printMainMenu() {
	fmt.Println("\n=== Main Menu ===")
	fmt.Println("1. Show Conversation")
	fmt.Println("2. Send Message")
	fmt.Println("3. Refresh Now")
	fmt.Println("4. Logout")
	fmt.Println("5. Exit")
	fmt.Print("> ")

	switch readLine() {
	case "1":
		a.handleShow()
	case "2":
		a.handleSend()
	case "3":
		a.handleRefresh()
	case "4":
		a.sessions.Logout()
		fmt.Println("Logged out")
	case "5":
		a.exit()
	default:
		fmt.Println("Invalid choice")
	}
}

func (a *app) handleLogin() {
	username := prompt("Username: ")
	password := prompt("Password: ")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	fmt.Printf("Login successful! Welcome, %s\n", sess.User.Username)

	if err := a.scheduler.Start(); err != nil {
		fmt.Printf("Failed to start sync: %v\n", err)
	}
}

func (a *app) handleShow() {
	messages := a.conversation.Messages()
	if len(messages) == 0 {
		fmt.Println("No messages yet.")
		return
	}
	for _, msg := range messages {
		marker := ""
		switch msg.Status {
		case domain.StatusPending:
			marker = " …"
		case domain.StatusFailed:
			marker = " ✗ (not delivered)"
		}
		fmt.Printf("[%s] %s: %s%s\n",
			msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Content, marker)
	}
}

func (a *app) handleSend() {
	content := prompt("You: ")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := a.coordinator.Send(ctx, content); err != nil {
		fmt.Printf("Send failed: %v\n", err)
		return
	}
	a.handleShow()
}

func (a *app) handleRefresh() {
	if err := a.scheduler.RefreshNow(); err != nil {
		fmt.Printf("Refresh failed: %v\n", err)
		return
	}
	// Give the poll a moment before re-rendering.
	time.Sleep(500 * time.Millisecond)
	a.handleShow()
}

func (a *app) exit() {
	a.scheduler.Stop()
	fmt.Println("Goodbye!")
	os.Exit(0)
}

func prompt(label string) string {
	fmt.Print(label)
	return readLine()
}

func readLine() string {
	input, err := reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(input)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/timeclock-hq/timeclock-backend-go/internal/config"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/station"
)

const usage = `usage: station <command> [args]

commands:
  login <login> <password>   bind an operator to this station
  logout                     close the operator session
  sync                       retrieve the task list from the server
  tasks                      print the local task list
  start <task-id>            start the timer for a task
  pause <task-id>            pause the timer for a task
  finish <task-id>           mark a task finished
  send-logs                  upload recorded work to the server
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "station:", err)
		os.Exit(1)
	}
}

type app struct {
	store  *station.Store
	client *station.Client
}

func run(command string, args []string) error {
	cfg, err := config.LoadStation()
	if err != nil {
		return err
	}

	store, err := station.OpenStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := station.NewClient(station.ClientConfig{
		Addr:   cfg.ServerAddress,
		Secret: cfg.PairingSecret,
	}, store, logger)
	defer client.Close()

	a := &app{store: store, client: client}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("login needs <login> and <password>")
		}
		return a.login(ctx, args[0], args[1])
	case "logout":
		return a.logout(ctx)
	case "sync":
		return a.sync(ctx)
	case "tasks":
		return a.printTasks(ctx)
	case "start":
		return a.taskEvent(ctx, worklog.EntryTaskStart, args)
	case "pause":
		return a.taskEvent(ctx, worklog.EntryTaskPause, args)
	case "finish":
		return a.taskEvent(ctx, worklog.EntryTaskFinish, args)
	case "send-logs":
		return a.sendLogs(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) credentials(ctx context.Context) (station.Credentials, error) {
	login, err := a.store.CurrentLogin(ctx)
	if err != nil {
		return station.Credentials{}, err
	}
	if login == "" {
		return station.Credentials{}, fmt.Errorf("nobody is logged in")
	}
	password, err := a.store.CurrentPassword(ctx)
	if err != nil {
		return station.Credentials{}, err
	}
	return station.Credentials{Login: login, Password: password}, nil
}

func (a *app) login(ctx context.Context, login, password string) error {
	creds := station.Credentials{Login: login, Password: password}
	if err := a.client.Authenticate(ctx, creds); err != nil {
		return err
	}
	if err := a.store.SetCredentials(ctx, login, password); err != nil {
		return err
	}
	if err := a.store.AppendEntry(ctx, worklog.Entry{
		Type:      worklog.EntryLogin,
		Timestamp: time.Now(),
		Login:     login,
	}); err != nil {
		return err
	}
	fmt.Println("logged in as", login)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}
	if err := a.store.AppendEntry(ctx, worklog.Entry{
		Type:      worklog.EntryLogout,
		Timestamp: time.Now(),
		Login:     creds.Login,
	}); err != nil {
		return err
	}
	if err := a.store.SetCredentials(ctx, "", ""); err != nil {
		return err
	}
	// Best effort: ship the session's log right away.
	if err := a.client.UploadLogs(ctx, creds); err != nil {
		fmt.Fprintln(os.Stderr, "station: log upload deferred:", err)
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) sync(ctx context.Context) error {
	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.client.RetrieveTasks(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Printf("retrieved %d task(s)\n", len(tasks))
	return nil
}

func (a *app) printTasks(ctx context.Context) error {
	tasks, err := a.store.Tasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("no tasks, run \"station sync\" first")
		return nil
	}
	for _, t := range tasks {
		spent := time.Duration(t.SecondsSpent) * time.Second
		fmt.Printf("#%d  %s  (spent %s)\n", t.ID, t.Title, spent)
		if t.Description != "" {
			fmt.Println("    " + t.Description)
		}
	}
	return nil
}

func (a *app) taskEvent(ctx context.Context, entryType worklog.EntryType, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s needs a <task-id>", entryType)
	}
	taskID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", args[0])
	}

	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}

	tasks, err := a.store.Tasks(ctx)
	if err != nil {
		return err
	}
	known := false
	for _, t := range tasks {
		if t.ID == taskID {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("task %d is not on this station, run \"station sync\"", taskID)
	}

	return a.store.AppendEntry(ctx, worklog.Entry{
		Type:      entryType,
		Timestamp: time.Now(),
		Login:     creds.Login,
		TaskID:    &taskID,
	})
}

func (a *app) sendLogs(ctx context.Context) error {
	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}
	return a.client.UploadLogs(ctx, creds)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matheus3301/jobboard/internal/instance"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/matheus3301/jobboard/internal/tui/client"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 256

func main() {
	instanceFlag := flag.String("instance", "", "instance name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	name := instance.Resolve(*instanceFlag)
	if err := instance.ValidateName(name); err != nil {
		fatalf("%v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c, err := client.New(instance.SocketPath(name))
	if err != nil {
		fatalf("cannot connect to daemon for instance %q: %v", name, err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := output{json: *jsonFlag}

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, out)
	case "conversations":
		need(args, 2, "conversations <userId>")
		cmdConversations(ctx, c, args[1], out)
	case "messages":
		need(args, 2, "messages <conversationId>")
		cmdMessages(ctx, c, args[1], out)
	case "send":
		need(args, 4, "send <userId> <conversationId> <text>")
		cmdSend(ctx, c, args[1], args[2], strings.Join(args[3:], " "))
	case "search":
		need(args, 3, "search <userId> <query>")
		cmdSearch(ctx, c, args[1], strings.Join(args[2:], " "), out)
	case "users":
		need(args, 5, "users add <id> <name> <candidate|recruiter> [email]")
		cmdUsersAdd(ctx, c, args[1:])
	case "jobs":
		need(args, 2, "jobs <add|list|status|qr> ...")
		cmdJobs(ctx, c, args[1:], out)
	case "apps":
		need(args, 3, "apps <status|match> <appId> ...")
		cmdApps(ctx, c, args[1:], out)
	case "templates":
		need(args, 2, "templates <userId> | templates add|rm ...")
		cmdTemplates(ctx, c, args[1:], out)
	case "notifications":
		need(args, 2, "notifications <userId> | notifications read <id>")
		cmdNotifications(ctx, c, args[1:], out)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: jobboardctl [--instance <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                                  Show daemon status")
	fmt.Fprintln(os.Stderr, "  conversations <userId>                  List a user's conversations")
	fmt.Fprintln(os.Stderr, "  messages <conversationId>               List messages in a conversation")
	fmt.Fprintln(os.Stderr, "  send <userId> <conversationId> <text>   Send a message as a user")
	fmt.Fprintln(os.Stderr, "  search <userId> <query>                 Full-text search of a user's messages")
	fmt.Fprintln(os.Stderr, "  users add <id> <name> <role> [email]    Create or update a user")
	fmt.Fprintln(os.Stderr, "  jobs add <recruiterId> <title> [skills]  Post a job (skills comma-separated)")
	fmt.Fprintln(os.Stderr, "  jobs list <recruiterId>                 List a recruiter's jobs")
	fmt.Fprintln(os.Stderr, "  jobs status <jobId> <status>            Set active, paused or closed")
	fmt.Fprintln(os.Stderr, "  jobs qr <jobId> <out.png>               Write a share code for a job")
	fmt.Fprintln(os.Stderr, "  apps status <appId> <status>            Change an application's status")
	fmt.Fprintln(os.Stderr, "  apps match <appId>                      Re-run resume matching")
	fmt.Fprintln(os.Stderr, "  templates <userId>                      List message templates")
	fmt.Fprintln(os.Stderr, "  templates add <userId> <title> <body>   Save a message template")
	fmt.Fprintln(os.Stderr, "  templates rm <templateId>               Delete a message template")
	fmt.Fprintln(os.Stderr, "  notifications <userId>                  List recent notifications")
	fmt.Fprintln(os.Stderr, "  notifications read <notificationId>    Mark a notification read")
}

func need(args []string, n int, usage string) {
	if len(args) < n {
		fatalf("usage: jobboardctl %s", usage)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}

type output struct {
	json bool
}

// emit prints v as JSON when --json is set and reports whether it did.
func (o output) emit(v any) bool {
	if !o.json {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
	return true
}

func cmdStatus(ctx context.Context, c *client.Client, out output) {
	resp, err := c.Daemon.GetStatus(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(resp) {
		return
	}
	fmt.Printf("Instance: %s\n", resp.Instance)
	if resp.Reason != "" {
		fmt.Printf("Status:   %s (%s)\n", resp.State, resp.Reason)
	} else {
		fmt.Printf("Status:   %s\n", resp.State)
	}
	fmt.Printf("Uptime:   %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).Round(time.Second))
	fmt.Printf("Storage:  %s\n", resp.Storage)
	fmt.Printf("Cache:    %v\n", resp.Cache)
	fmt.Printf("Matching: %s\n", resp.Matching)
	fmt.Printf("Email:    %v\n", resp.Email)
	fmt.Printf("Watchers: %d\n", resp.Listeners)
	fmt.Printf("Counts:   %d users, %d jobs, %d applications, %d conversations, %d messages\n",
		resp.Stats.Users, resp.Stats.Jobs, resp.Stats.Applications, resp.Stats.Conversations, resp.Stats.Messages)
}

func cmdConversations(ctx context.Context, c *client.Client, userID string, out output) {
	convs, err := c.Conversations.ListForUser(ctx, userID)
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(convs) {
		return
	}
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, conv := range convs {
		other := conv.Other(userID)
		who := other
		if d, ok := conv.ParticipantDetails[other]; ok && d.Name != "" {
			who = d.Name
		}
		fmt.Printf("%-36s %-24s %3d unread  %s\n", conv.ID, who, conv.UnreadCount[userID], conv.LastMessage)
	}
}

func cmdMessages(ctx context.Context, c *client.Client, conversationID string, out output) {
	msgs, err := c.Messages.List(ctx, conversationID)
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(msgs) {
		return
	}
	for _, m := range msgs {
		ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
		text := m.Content
		if m.HasAttachment() {
			text = fmt.Sprintf("[%s] %s %s", m.AttachmentType, m.AttachmentName, text)
		}
		read := " "
		if m.Read {
			read = "r"
		}
		fmt.Printf("%s %s %-20s %s\n", ts, read, m.SenderID, text)
	}
}

// cmdSend goes through the same thread view-model the TUI uses, so unread
// counters and notifications behave identically.
func cmdSend(ctx context.Context, c *client.Client, userID, conversationID, text string) {
	u, err := c.Directory.GetUser(ctx, userID)
	if err != nil {
		fatalf("%v", err)
	}
	if u == nil {
		fatalf("no user %q", userID)
	}
	sess := session.FromUser(u)
	if err := sess.Validate(); err != nil {
		fatalf("%v", err)
	}

	thread := messaging.NewThread(c, sess, zap.NewNop())
	defer thread.Close()

	if state := thread.Open(ctx, conversationID); state != messaging.ThreadReady {
		fatalf("conversation %s: %s", conversationID, state)
	}
	if !thread.Send(ctx, text) {
		fatalf("%s", thread.Flash.Get())
	}
	fmt.Println("Sent.")
}

func cmdSearch(ctx context.Context, c *client.Client, userID, query string, out output) {
	results, err := c.Messages.Search(ctx, &rpc.SearchRequest{Query: query, UserID: userID})
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(results) {
		return
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range results {
		fmt.Printf("%s %s %s\n", r.Message.ConversationID, r.Message.SenderID, r.Snippet)
	}
}

func cmdUsersAdd(ctx context.Context, c *client.Client, args []string) {
	if args[0] != "add" {
		fatalf("unknown users subcommand: %s", args[0])
	}
	u := &store.User{ID: args[1], Name: args[2], Role: args[3]}
	if len(args) > 4 {
		u.Email = args[4]
	}
	if err := c.Directory.UpsertUser(ctx, u); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("User %s saved.\n", u.ID)
}

func cmdJobs(ctx context.Context, c *client.Client, args []string, out output) {
	switch args[0] {
	case "add":
		need(args, 3, "jobs add <recruiterId> <title> [skills]")
		j := &store.Job{RecruiterID: args[1], Title: args[2]}
		if len(args) > 3 {
			for _, s := range strings.Split(args[3], ",") {
				if s = strings.TrimSpace(s); s != "" {
					j.Skills = append(j.Skills, s)
				}
			}
		}
		saved, err := c.Directory.UpsertJob(ctx, j)
		if err != nil {
			fatalf("%v", err)
		}
		if out.emit(saved) {
			return
		}
		fmt.Printf("Job %s posted.\n", saved.ID)
	case "list":
		need(args, 2, "jobs list <recruiterId>")
		jobs, err := c.Directory.ListJobs(ctx, args[1])
		if err != nil {
			fatalf("%v", err)
		}
		if out.emit(jobs) {
			return
		}
		for _, j := range jobs {
			fmt.Printf("%-36s %-7s %s (%s)\n", j.ID, j.Status, j.Title, strings.Join(j.Skills, ", "))
		}
	case "status":
		need(args, 3, "jobs status <jobId> <active|paused|closed>")
		if err := c.Directory.SetJobStatus(ctx, args[1], args[2]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Job %s is now %s.\n", args[1], args[2])
	case "qr":
		need(args, 3, "jobs qr <jobId> <out.png>")
		j, err := c.Directory.GetJob(ctx, args[1])
		if err != nil {
			fatalf("%v", err)
		}
		if j == nil {
			fatalf("no job %q", args[1])
		}
		if err := qrcode.WriteFile(shareLink(j), qrcode.Medium, qrSize, args[2]); err != nil {
			fatalf("write share code: %v", err)
		}
		fmt.Printf("Share code for %q written to %s\n", j.Title, args[2])
	default:
		fatalf("unknown jobs subcommand: %s", args[0])
	}
}

func shareLink(j *store.Job) string {
	return "jobboard://jobs/" + j.ID
}

func cmdApps(ctx context.Context, c *client.Client, args []string, out output) {
	var (
		app *store.Application
		err error
	)
	switch args[0] {
	case "status":
		need(args, 3, "apps status <appId> <status>")
		app, err = c.Applications.SetStatus(ctx, args[1], args[2])
	case "match":
		app, err = c.Applications.RequestMatch(ctx, args[1])
	default:
		fatalf("unknown apps subcommand: %s", args[0])
	}
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(app) {
		return
	}
	fmt.Printf("Application %s: %s\n", app.ID, app.Status)
	if len(app.ResumeAnalysis) > 0 {
		fmt.Printf("Analysis: %s\n", app.ResumeAnalysis)
	}
}

func cmdTemplates(ctx context.Context, c *client.Client, args []string, out output) {
	switch args[0] {
	case "add":
		need(args, 4, "templates add <userId> <title> <body>")
		t, err := c.Directory.SaveTemplate(ctx, &store.MessageTemplate{
			OwnerID: args[1],
			Title:   args[2],
			Body:    strings.Join(args[3:], " "),
		})
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Template %s saved.\n", t.ID)
		return
	case "rm":
		need(args, 2, "templates rm <templateId>")
		if err := c.Directory.DeleteTemplate(ctx, args[1]); err != nil {
			fatalf("%v", err)
		}
		fmt.Println("Deleted.")
		return
	}

	ts, err := c.Directory.ListTemplates(ctx, args[0])
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(ts) {
		return
	}
	for _, t := range ts {
		fmt.Printf("%-36s %s\n", t.ID, t.Title)
	}
}

func cmdNotifications(ctx context.Context, c *client.Client, args []string, out output) {
	if args[0] == "read" {
		need(args, 2, "notifications read <notificationId>")
		if err := c.Directory.MarkNotificationRead(ctx, args[1]); err != nil {
			fatalf("%v", err)
		}
		return
	}

	ns, err := c.Directory.ListNotifications(ctx, args[0], 20)
	if err != nil {
		fatalf("%v", err)
	}
	if out.emit(ns) {
		return
	}
	for _, n := range ns {
		state := "pending"
		switch {
		case n.Delivered:
			state = "delivered"
		case n.LastError != "":
			state = "failed: " + n.LastError
		}
		read := " "
		if !n.Read {
			read = "*"
		}
		fmt.Printf("%s %s %-36s %-20s %s (%s)\n", read, time.UnixMilli(n.CreatedAt).Format("2006-01-02 15:04"), n.ID, n.Kind, n.Title, state)
	}
}

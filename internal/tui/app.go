// Package tui is the terminal client: an inbox and a conversation view driven
// by the messaging view-models over the daemon socket.
package tui

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/tui/client"
	"github.com/matheus3301/jobboard/internal/tui/keys"
	"github.com/matheus3301/jobboard/internal/tui/ui"
	"github.com/matheus3301/jobboard/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageConversations = "conversations"
	pageThread        = "thread"
	pageDetails       = "details"
	pageSearch        = "search"
	pageTemplates     = "templates"
	pageHelp          = "help"

	statusInterval = 5 * time.Second
	searchLimit    = 50
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	layout   *tview.Flex
	pages    *ui.Pages
	crumbs   *ui.Crumbs
	menu     *ui.Menu
	logo     *ui.Logo
	info     *ui.InstanceInfo
	flash    *ui.FlashModel
	flashBar *ui.FlashBar
	prompt   *ui.Prompt
	registry *keys.Registry

	client   *client.Client
	sess     session.Session
	instance string
	logger   *zap.Logger

	inbox  *messaging.Inbox
	thread *messaging.Thread

	convList  *views.ConversationList
	threadV   *views.MessageThread
	details   *views.ConversationInfo
	search    *views.SearchView
	templates *views.TemplatePicker
	help      *views.HelpView

	components    map[string]ui.Component
	promptVisible bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application for the signed-in user.
func NewApp(c *client.Client, sess session.Session, instanceName string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		crumbs:    ui.NewCrumbs(theme),
		menu:      ui.NewMenu(theme),
		logo:      ui.NewLogo(theme),
		info:      ui.NewInstanceInfo(theme),
		flash:     ui.NewFlashModel(),
		flashBar:  ui.NewFlashBar(theme),
		prompt:    ui.NewPrompt(theme),
		registry:  keys.NewRegistry(),
		client:    c,
		sess:      sess,
		instance:  instanceName,
		logger:    logger,
		inbox:     messaging.NewInbox(c, sess, logger),
		thread:    messaging.NewThread(c, sess, logger),
		convList:  views.NewConversationList(theme, sess.UserID),
		threadV:   views.NewMessageThread(theme, sess.UserID),
		details:   views.NewConversationInfo(theme, sess.UserID),
		search:    views.NewSearchView(theme),
		templates: views.NewTemplatePicker(theme),
		help:      views.NewHelpView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.components = map[string]ui.Component{
		pageConversations: a.convList,
		pageThread:        a.threadV,
		pageDetails:       a.details,
		pageSearch:        a.search,
		pageTemplates:     a.templates,
		pageHelp:          a.help,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(keys.RuneAction('q', "quit", a.Stop))
	a.registry.AddGlobal(keys.RuneAction('?', "help", func() { a.push(pageHelp) }))
	a.registry.AddGlobal(keys.RuneAction(':', "command", func() { a.showPrompt(ui.PromptCommand) }))

	a.registry.AddView(pageConversations, keys.RuneAction('/', "filter", func() { a.showPrompt(ui.PromptFilter) }))
	a.registry.AddView(pageConversations, keys.RuneAction('0', "clear filter", a.convList.ClearFilter))
	for n := 1; n <= 9; n++ {
		a.registry.AddView(pageConversations, keys.RuneAction(rune('0'+n), "jump", func() {
			if id := a.convList.ConversationByIndex(n); id != "" {
				a.openConversation(id)
			}
		}))
	}

	a.registry.AddView(pageThread, keys.RuneAction('i', "compose", func() { a.app.SetFocus(a.threadV.Composer()) }))
	a.registry.AddView(pageThread, keys.RuneAction('d', "details", func() { a.push(pageDetails) }))
	a.registry.AddView(pageThread, keys.RuneAction('t', "templates", a.showTemplates))
}

func (a *App) setupCallbacks() {
	a.pages.SetOnChange(func(stack []string) {
		names := make([]string, len(stack))
		for i, page := range stack {
			names[i] = a.components[page].Name()
		}
		a.crumbs.Update(names)
		if len(stack) > 0 {
			a.menu.Update(a.components[stack[len(stack)-1]].Hints())
		}
	})

	a.convList.SetSelectedFunc(func(row, _ int) {
		if id := a.convList.ConversationByIndex(row); id != "" {
			a.openConversation(id)
		}
	})

	a.threadV.SetOnChange(a.thread.SetDraft)
	a.threadV.SetOnSend(func(text string) {
		a.thread.SetDraft(text)
		go func() {
			if a.thread.SendDraft(a.ctx) {
				a.flash.Info("Message sent")
			}
		}()
	})

	a.search.SetNames(func(conversationID string) string {
		for _, c := range a.inbox.Conversations() {
			if c.ID == conversationID {
				return views.DisplayName(&c, a.sess.UserID)
			}
		}
		return ""
	})
	a.search.SetOnQuery(a.runSearch)
	a.search.Results().SetSelectedFunc(func(_, _ int) {
		if convID, _ := a.search.SelectedResult(); convID != "" {
			a.openConversation(convID)
		}
	})

	a.templates.SetSelectedFunc(func(_, _ int) {
		id := a.templates.Selected()
		if id == "" {
			return
		}
		a.back()
		go func() {
			if a.thread.SelectTemplate(a.ctx, id) {
				a.app.QueueUpdateDraw(func() { a.app.SetFocus(a.threadV.Composer()) })
			}
		}()
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptFilter {
			a.convList.SetFilter(text)
			return
		}
		a.runCommand(ParseCommand(text))
	})
	a.prompt.SetOnCancel(a.hidePrompt)
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageConversations, a.convList, true, false)
	a.pages.AddPage(pageThread, a.threadV, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)
	a.pages.AddPage(pageSearch, a.search, true, false)
	a.pages.AddPage(pageTemplates, a.templates, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)

	header := tview.NewFlex().
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(a.logo, 14, 0, false)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.layout, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.promptVisible {
		return event
	}

	focused := a.app.GetFocus()
	if event.Key() == tcell.KeyEscape {
		if focused == a.threadV.Composer() {
			a.app.SetFocus(a.threadV.Messages())
			return nil
		}
		a.back()
		return nil
	}

	// Let text input widgets handle all keys normally.
	if _, ok := focused.(*tview.InputField); ok {
		return event
	}

	if a.registry.HandleEvent(a.pages.Current(), event) {
		return nil
	}
	return event
}

func (a *App) push(page string) {
	if a.pages.Current() == page {
		return
	}
	a.pages.Push(page)
	a.focusCurrent()
}

// back pops one page; leaving the thread stops its live query. On the root
// page it dismisses the flash line instead.
func (a *App) back() {
	if a.pages.Depth() <= 1 {
		a.flash.Dismiss()
		return
	}
	if a.pages.Pop() == pageThread {
		a.thread.Close()
	}
	a.focusCurrent()
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case pageConversations:
		a.app.SetFocus(a.convList)
	case pageThread:
		a.app.SetFocus(a.threadV.Messages())
	case pageDetails:
		a.app.SetFocus(a.details)
	case pageSearch:
		a.app.SetFocus(a.search.Input())
	case pageTemplates:
		a.app.SetFocus(a.templates)
	case pageHelp:
		a.app.SetFocus(a.help)
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.promptVisible = true
	a.layout.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptVisible = false
	a.layout.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

func (a *App) openConversation(id string) {
	a.pages.Reset(pageConversations)
	a.threadV.Reset()
	a.push(pageThread)
	go func() {
		switch a.thread.Open(a.ctx, id) {
		case messaging.ThreadNotFound:
			a.flash.Warn("Conversation not found")
		case messaging.ThreadForbidden:
			a.flash.Warn("You are not a participant of this conversation")
		}
	}()
}

func (a *App) showTemplates() {
	go func() {
		tmpls := a.thread.Templates(a.ctx)
		a.app.QueueUpdateDraw(func() {
			if len(tmpls) == 0 {
				a.flash.Info("No templates saved")
				return
			}
			a.templates.Update(tmpls, a.thread.ApplyTemplate)
			a.push(pageTemplates)
		})
	}()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case "quit":
		a.Stop()
	case "help":
		a.push(pageHelp)
	case "search":
		a.push(pageSearch)
		if q := cmd.Rest(); q != "" {
			a.search.Input().SetText(q)
			a.runSearch(q)
		}
	case "new":
		if len(cmd.Args) == 0 {
			a.flash.Warn("usage: new <user-id> [job-id]")
			return
		}
		other, jobID := cmd.Args[0], ""
		if len(cmd.Args) > 1 {
			jobID = cmd.Args[1]
		}
		go func() {
			conv, err := a.inbox.GetOrCreate(a.ctx, other, jobID)
			if err != nil {
				a.flash.Err(err)
				return
			}
			a.app.QueueUpdateDraw(func() { a.openConversation(conv.ID) })
		}()
	case "attach":
		a.attach(cmd.Rest())
	case "detach":
		a.thread.Stage(nil)
	case "template":
		if len(cmd.Args) == 0 {
			a.showTemplates()
			return
		}
		go func() {
			if !a.thread.SelectTemplate(a.ctx, cmd.Args[0]) {
				a.flash.Warn("No template " + cmd.Args[0])
			}
		}()
	default:
		a.flash.Warn("Unknown command: " + cmd.Name)
	}
}

func (a *App) attach(path string) {
	if a.thread.View().State != messaging.ThreadReady {
		a.flash.Warn("Open a conversation first")
		return
	}
	if path == "" {
		a.flash.Warn("usage: attach <path>")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		a.flash.Err(err)
		return
	}
	if info.Size() > rpc.MaxMessageSize-(1<<20) {
		a.flash.Warn(fmt.Sprintf("%s is too large", filepath.Base(path)))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.flash.Err(err)
		return
	}
	a.thread.Stage(&messaging.Attachment{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	})
	a.app.SetFocus(a.threadV.Composer())
}

func (a *App) runSearch(query string) {
	if query == "" {
		return
	}
	go func() {
		results, err := a.client.Messages.Search(a.ctx, &rpc.SearchRequest{Query: query, UserID: a.sess.UserID, Limit: searchLimit})
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.search.Update(results)
			a.app.SetFocus(a.search.Results())
		})
	}()
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.pages.Push(pageConversations)
	a.focusCurrent()

	if err := a.inbox.ListForUser(a.ctx, a.sess.UserID); err != nil {
		a.flash.Err(err)
	}

	go a.watchInbox()
	go a.watchThread()
	go a.watchFlash()
	go a.pollStatus()

	return a.app.Run()
}

func (a *App) watchInbox() {
	for {
		select {
		case <-a.inbox.Updates():
			convs := a.inbox.Conversations()
			msg := a.inbox.Flash.Get()
			a.inbox.Flash.Clear()
			a.app.QueueUpdateDraw(func() {
				a.convList.Update(convs)
			})
			if msg != "" {
				a.flash.Warn(msg)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) watchThread() {
	for {
		select {
		case <-a.thread.Updates():
			v := a.thread.View()
			scroll := a.thread.TakeScroll()
			msg := a.thread.Flash.Get()
			a.thread.Flash.Clear()
			a.app.QueueUpdateDraw(func() {
				a.threadV.Update(v, scroll)
				a.details.Update(v)
				a.menu.Update(a.components[a.pages.Current()].Hints())
			})
			if msg != "" {
				a.flash.Warn(msg)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// watchFlash renders new flash messages and clears them once expired.
func (a *App) watchFlash() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.flash.Watch():
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
		msg := a.flash.GetMessage()
		a.app.QueueUpdateDraw(func() { a.flashBar.Update(msg) })
	}
}

func (a *App) pollStatus() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		a.refreshStatus()
		select {
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) refreshStatus() {
	data := &ui.InstanceData{
		Instance: a.instance,
		User:     a.sess.Name,
		Role:     a.sess.Role,
		Status:   "UNREACHABLE",
	}
	ctx, cancel := context.WithTimeout(a.ctx, 2*time.Second)
	defer cancel()
	if resp, err := a.client.Daemon.GetStatus(ctx); err == nil {
		data.Status = resp.State
		data.Conversations = resp.Stats.Conversations
		data.Messages = resp.Stats.Messages
		data.Uptime = time.Duration(resp.UptimeMs) * time.Millisecond
	} else {
		a.logger.Debug("status poll failed", zap.Error(err))
	}
	a.app.QueueUpdateDraw(func() { a.info.Update(data) })
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.thread.Close()
	a.inbox.Close()
	a.app.Stop()
}

// Session returns the signed-in user.
func (a *App) Session() session.Session {
	return a.sess
}
